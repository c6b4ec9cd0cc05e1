package models

import "time"

// Estados del ciclo de vida de un premio
const (
	EstadoPreparacion = "preparacion"
	EstadoVotacion1   = "votacion_1"
	EstadoVotacion2   = "votacion_2"
	EstadoFinalizado  = "finalizado"
)

// Tipos de premio
const (
	TipoDirecto   = "directo"
	TipoIndirecto = "indirecto"
)

// Reglas de votación. MaxVotosRonda1 quedó en 5 tras la última revisión de
// las reglas de la gala (ediciones anteriores usaron 3).
const (
	MaxVotosRonda1 = 5
	MaxVotosRonda2 = 3

	PuntosOro    = 3
	PuntosPlata  = 2
	PuntosBronce = 1
)

// Códigos de error estables. Los clientes dependen de estos identificadores:
// no cambiarlos sin versionar la API.
const (
	CodeUserNotVerified         = "user_not_verified"
	CodePremioNotFound          = "premio_not_found"
	CodePremioNotOpen           = "premio_not_open"
	CodeNominadoMismatch        = "nominado_mismatch"
	CodeSelfVoteForbidden       = "self_vote_forbidden"
	CodeInvalidRound            = "invalid_round"
	CodeInvalidOrderR1          = "invalid_order_r1"
	CodeMissingOrderR2          = "missing_order_r2"
	CodeInvalidOrderValue       = "invalid_order_value"
	CodeMaxVotesR1Reached       = "max_votes_r1_reached"
	CodeMaxVotesR2Reached       = "max_votes_r2_reached"
	CodeAlreadyVotedNominadoR1  = "already_voted_nominado_r1"
	CodeAlreadyVotedNominadoR2  = "already_voted_nominado_r2"
	CodePositionAlreadyUsed     = "position_already_used"
	CodeResultsAlreadyPublished = "results_already_published"
	CodeEstadoInvalido          = "estado_invalido"
	CodeTransicionInvalida      = "transicion_invalida"

	CodeInvalidJSON      = "invalid_json"
	CodeValidationError  = "validation_error"
	CodeNotAuthenticated = "not_authenticated"
	CodeAdminRequired    = "admin_required"
	CodeNotFound         = "not_found"
	CodeConflict         = "conflict"
	CodeDBError          = "db_error"
)

// Tipos de dominio

type Usuario struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Nombre        string    `json:"nombre"`
	Apellidos     string    `json:"apellidos"`
	FotoURL       *string   `json:"foto_url,omitempty"`
	Descripcion   *string   `json:"descripcion,omitempty"`
	Verificado    bool      `json:"verificado"`
	EsAdmin       bool      `json:"es_admin"`
	FechaRegistro time.Time `json:"fecha_registro"`
}

type Premio struct {
	ID                 string     `json:"id"`
	Nombre             string     `json:"nombre"`
	Tipo               string     `json:"tipo"`
	Slug               *string    `json:"slug,omitempty"`
	Descripcion        *string    `json:"descripcion,omitempty"`
	ImageURL           *string    `json:"image_url,omitempty"`
	Activo             bool       `json:"activo"`
	Estado             string     `json:"estado"`
	RondaActual        int        `json:"ronda_actual"`
	VinculosRequeridos int        `json:"vinculos_requeridos"`
	GanadorOro         *string    `json:"ganador_oro,omitempty"`
	GanadorPlata       *string    `json:"ganador_plata,omitempty"`
	GanadorBronce      *string    `json:"ganador_bronce,omitempty"`
	FechaInicioRonda1  *time.Time `json:"fecha_inicio_ronda1,omitempty"`
	FechaFinRonda1     *time.Time `json:"fecha_fin_ronda1,omitempty"`
	FechaInicioRonda2  *time.Time `json:"fecha_inicio_ronda2,omitempty"`
	FechaFinRonda2     *time.Time `json:"fecha_fin_ronda2,omitempty"`
	FechaResultadosPub *time.Time `json:"fecha_resultados_publicados,omitempty"`
}

type Nominado struct {
	ID            string    `json:"id"`
	PremioID      string    `json:"premio_id"`
	Nombre        string    `json:"nombre"`
	Descripcion   *string   `json:"descripcion,omitempty"`
	ImagenURL     *string   `json:"imagen_url,omitempty"`
	Activo        bool      `json:"activo"`
	FechaCreacion time.Time `json:"fecha_creacion"`

	// Usuarios vinculados (guardia de auto-voto). Solo se rellena en las
	// lecturas que lo necesitan.
	UsuariosVinculados []Usuario `json:"usuarios_vinculados,omitempty"`
}

type Voto struct {
	ID          string    `json:"id"`
	UsuarioID   string    `json:"usuario_id"`
	PremioID    string    `json:"premio_id"`
	NominadoID  string    `json:"nominado_id"`
	Ronda       int       `json:"ronda"`
	OrdenRonda2 *int      `json:"orden_ronda2,omitempty"`
	FechaVoto   time.Time `json:"fecha_voto"`
	IPHash      *string   `json:"-"`
	UserAgent   *string   `json:"-"`
}

type Sugerencia struct {
	ID              string    `json:"id"`
	UsuarioID       string    `json:"usuario_id"`
	Tipo            string    `json:"tipo"`
	Contenido       string    `json:"contenido"`
	FechaSugerencia time.Time `json:"fecha_sugerencia"`
	Revisada        bool      `json:"revisada"`
	NotasAdmin      *string   `json:"notas_admin,omitempty"`
}

// Peticiones

type RegistroRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Nombre    string `json:"nombre"`
	Apellidos string `json:"apellidos"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ActualizarPerfilRequest struct {
	Nombre      *string `json:"nombre,omitempty"`
	Apellidos   *string `json:"apellidos,omitempty"`
	FotoURL     *string `json:"foto_url,omitempty"`
	Descripcion *string `json:"descripcion,omitempty"`
}

type VotarRequest struct {
	Premio      string `json:"premio"`
	Nominado    string `json:"nominado"`
	Ronda       int    `json:"ronda"`
	OrdenRonda2 *int   `json:"orden_ronda2,omitempty"`
}

type CrearPremioRequest struct {
	Nombre             string  `json:"nombre"`
	Tipo               string  `json:"tipo"`
	Slug               *string `json:"slug,omitempty"`
	Descripcion        *string `json:"descripcion,omitempty"`
	ImageURL           *string `json:"image_url,omitempty"`
	VinculosRequeridos int     `json:"vinculos_requeridos"`
}

type ActualizarPremioRequest struct {
	Nombre             *string `json:"nombre,omitempty"`
	Tipo               *string `json:"tipo,omitempty"`
	Slug               *string `json:"slug,omitempty"`
	Descripcion        *string `json:"descripcion,omitempty"`
	ImageURL           *string `json:"image_url,omitempty"`
	Activo             *bool   `json:"activo,omitempty"`
	VinculosRequeridos *int    `json:"vinculos_requeridos,omitempty"`
}

type CrearNominadoRequest struct {
	Premio             string   `json:"premio"`
	Nombre             string   `json:"nombre"`
	Descripcion        *string  `json:"descripcion,omitempty"`
	ImagenURL          *string  `json:"imagen_url,omitempty"`
	UsuariosVinculados []string `json:"usuarios_vinculados"`
}

type ActualizarNominadoRequest struct {
	Nombre             *string   `json:"nombre,omitempty"`
	Descripcion        *string   `json:"descripcion,omitempty"`
	ImagenURL          *string   `json:"imagen_url,omitempty"`
	Activo             *bool     `json:"activo,omitempty"`
	UsuariosVinculados *[]string `json:"usuarios_vinculados,omitempty"`
}

type CambiarEstadoRequest struct {
	NuevoEstado string `json:"nuevo_estado"`
}

type PublicarResultadosRequest struct {
	PremioID string `json:"premio_id,omitempty"`
}

type CrearSugerenciaRequest struct {
	Tipo      string `json:"tipo"`
	Contenido string `json:"contenido"`
}

type RevisarSugerenciaRequest struct {
	Revisada   *bool   `json:"revisada,omitempty"`
	NotasAdmin *string `json:"notas_admin,omitempty"`
}

type AdminActualizarUsuarioRequest struct {
	Verificado  *bool   `json:"verificado,omitempty"`
	EsAdmin     *bool   `json:"es_admin,omitempty"`
	Nombre      *string `json:"nombre,omitempty"`
	Apellidos   *string `json:"apellidos,omitempty"`
	FotoURL     *string `json:"foto_url,omitempty"`
	Descripcion *string `json:"descripcion,omitempty"`
}

// Respuestas

type LoginResponse struct {
	Token   string  `json:"token"`
	Usuario Usuario `json:"usuario"`
}

type VotarResponse struct {
	Message string `json:"message"`
	VotoID  string `json:"voto_id"`
}

type VerificarVotoResponse struct {
	YaVoto       bool   `json:"ya_voto"`
	RondaActual  int    `json:"ronda_actual"`
	EstadoPremio string `json:"estado_premio"`
	LimiteVotos  int    `json:"limite_votos"`
}

type PremioConNominados struct {
	Premio
	Nominados []Nominado `json:"nominados"`
}

// NominadoPuntos es una fila de la clasificación de la ronda 2.
type NominadoPuntos struct {
	NominadoID string `json:"nominado_id"`
	Nombre     string `json:"nombre"`
	Puntos     int    `json:"puntos_totales"`
}

type Ganadores struct {
	Oro    *Nominado `json:"oro"`
	Plata  *Nominado `json:"plata"`
	Bronce *Nominado `json:"bronce"`
}

type ResultadoPremio struct {
	PremioID           string           `json:"premio_id"`
	PremioNombre       string           `json:"premio_nombre"`
	Ganadores          Ganadores        `json:"ganadores"`
	NominadosPorPuntos []NominadoPuntos `json:"nominados_por_puntos"`
}

type PublicarResultadosResponse struct {
	Message string            `json:"message"`
	Premios []ResultadoPremio `json:"premios_resultados"`
}

type CambiarEstadoResponse struct {
	Message string `json:"message"`
	Premio  Premio `json:"premio"`
}

type AvanzarFaseResponse struct {
	Message          string `json:"message"`
	FaseGlobal       string `json:"fase_global"`
	PremiosAvanzados int    `json:"premios_avanzados"`
}

type ResetGalaResponse struct {
	Message            string `json:"message"`
	VotosEliminados    int64  `json:"votos_eliminados"`
	PremiosReiniciados int64  `json:"premios_reiniciados"`
}

type MisEstadisticasResponse struct {
	TotalNominaciones   int       `json:"total_nominaciones"`
	TotalVotosRecibidos int       `json:"total_votos_recibidos"`
	Oros                int       `json:"oros"`
	Platas              int       `json:"platas"`
	Bronces             int       `json:"bronces"`
	Fase                FaseFlags `json:"fase"`
}

type FaseFlags struct {
	MostrarMedallas bool `json:"mostrar_medallas"`
	MostrarRonda2   bool `json:"mostrar_ronda2"`
}

type VotoResumen struct {
	ID       string `json:"id"`
	Nominado string `json:"nominado"`
	Fecha    string `json:"fecha"`
	Orden    *int   `json:"orden,omitempty"`
}

type MisVotosPremio struct {
	PremioID     string        `json:"premio_id"`
	PremioNombre string        `json:"premio_nombre"`
	Ronda1       []VotoResumen `json:"ronda_1"`
	Ronda2       []VotoResumen `json:"ronda_2"`
}

type UltimoVoto struct {
	Usuario  string `json:"usuario"`
	Premio   string `json:"premio"`
	Nominado string `json:"nominado"`
	Ronda    int    `json:"ronda"`
	Fecha    string `json:"fecha"`
	Hace     string `json:"hace"`
}

type UsuarioActivo struct {
	Usuario    string `json:"usuario"`
	TotalVotos int    `json:"total_votos"`
}

type EstadisticasResponse struct {
	TotalUsuarios    int             `json:"total_usuarios"`
	TotalPremios     int             `json:"total_premios"`
	TotalVotos       int             `json:"total_votos"`
	FaseGlobal       string          `json:"fase_global"`
	PremiosPorEstado map[string]int  `json:"premios_por_estado"`
	VotosPorRonda    map[string]int  `json:"votos_por_ronda"`
	UltimosVotos     []UltimoVoto    `json:"ultimos_votos"`
	UsuariosActivos  []UsuarioActivo `json:"usuarios_activos"`
}

type PremioTop struct {
	PremioID   string `json:"premio_id"`
	Nombre     string `json:"nombre"`
	Estado     string `json:"estado"`
	TotalVotos int    `json:"total_votos"`
}

// ErrorResponse es el cuerpo uniforme de error de toda la API.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}
