package handlers

import (
	"fmt"
	"net/http"

	"github.com/ThePeem/gala-premios-backend/models"
)

// AdmissionInput is a snapshot of everything the voting rules depend on.
// The handler fills it from the store inside the same transaction that will
// insert the vote, so the decision and the write see consistent state.
type AdmissionInput struct {
	UsuarioVerificado bool

	PremioEncontrado  bool
	PremioID          string
	PremioActivo      bool
	PremioEstado      string
	PremioRondaActual int

	NominadoEncontrado bool
	NominadoPremioID   string

	// The requesting user appears among the nominee's linked users.
	VinculadoAlUsuario bool

	Ronda       int
	OrdenRonda2 *int

	// State of the caller's existing ballots for (premio, ronda).
	VotosEmitidos    int
	NominadoYaVotado bool
	OrdenYaUsado     bool
}

// VoteRejection is a tagged refusal: an HTTP status, a human detail and a
// stable machine code.
type VoteRejection struct {
	Status int
	Detail string
	Code   string
}

func reject(status int, detail, code string) *VoteRejection {
	return &VoteRejection{Status: status, Detail: detail, Code: code}
}

// EvaluateVote applies every admission rule in a fixed order and returns nil
// when the vote may be inserted. This is the single place where the rules
// live; the ledger's unique constraints back up the duplicate checks against
// races.
func EvaluateVote(in AdmissionInput) *VoteRejection {
	if !in.UsuarioVerificado {
		return reject(http.StatusForbidden,
			"Tu cuenta no ha sido verificada por un administrador y no puedes votar.",
			models.CodeUserNotVerified)
	}

	if in.Ronda != 1 && in.Ronda != 2 {
		return reject(http.StatusBadRequest,
			"Ronda de votación no válida.", models.CodeInvalidRound)
	}

	if !in.PremioEncontrado {
		return reject(http.StatusNotFound,
			"Premio no encontrado.", models.CodePremioNotFound)
	}

	// El estado textual y la ronda numérica tienen que coincidir ambos:
	// un premio con estado votacion_2 rechaza votos de ronda 1 aunque esa
	// ronda existiera antes.
	if !in.PremioActivo ||
		in.PremioEstado != fmt.Sprintf("votacion_%d", in.Ronda) ||
		in.PremioRondaActual != in.Ronda {
		return reject(http.StatusBadRequest,
			fmt.Sprintf("Este premio no está abierto para votación en la Ronda %d.", in.Ronda),
			models.CodePremioNotOpen)
	}

	if !in.NominadoEncontrado || in.NominadoPremioID != in.PremioID {
		return reject(http.StatusBadRequest,
			"El nominado seleccionado no pertenece a este premio.",
			models.CodeNominadoMismatch)
	}

	if in.VinculadoAlUsuario {
		return reject(http.StatusBadRequest,
			"No puedes votarte a ti mismo en ninguna ronda.",
			models.CodeSelfVoteForbidden)
	}

	switch in.Ronda {
	case 1:
		if in.OrdenRonda2 != nil {
			return reject(http.StatusBadRequest,
				"El campo 'orden_ronda2' no es válido en la Ronda 1.",
				models.CodeInvalidOrderR1)
		}
		if in.VotosEmitidos >= models.MaxVotosRonda1 {
			return reject(http.StatusBadRequest,
				fmt.Sprintf("Ya has emitido el máximo de %d votos para este premio en la Ronda 1.", models.MaxVotosRonda1),
				models.CodeMaxVotesR1Reached)
		}
		if in.NominadoYaVotado {
			return reject(http.StatusConflict,
				"Ya has votado por este nominado en esta ronda.",
				models.CodeAlreadyVotedNominadoR1)
		}

	case 2:
		if in.OrdenRonda2 == nil {
			return reject(http.StatusBadRequest,
				"Para la Ronda 2, debes especificar un 'orden_ronda2' (1, 2 o 3).",
				models.CodeMissingOrderR2)
		}
		if *in.OrdenRonda2 < 1 || *in.OrdenRonda2 > 3 {
			return reject(http.StatusBadRequest,
				"El 'orden_ronda2' debe ser 1 (Oro), 2 (Plata) o 3 (Bronce).",
				models.CodeInvalidOrderValue)
		}
		if in.VotosEmitidos >= models.MaxVotosRonda2 {
			return reject(http.StatusBadRequest,
				fmt.Sprintf("Ya has emitido el máximo de %d votos para este premio en la Ronda 2.", models.MaxVotosRonda2),
				models.CodeMaxVotesR2Reached)
		}
		if in.OrdenYaUsado {
			return reject(http.StatusConflict,
				fmt.Sprintf("Ya has usado la posición %d para este premio en la Ronda 2.", *in.OrdenRonda2),
				models.CodePositionAlreadyUsed)
		}
		if in.NominadoYaVotado {
			return reject(http.StatusConflict,
				"Ya has votado por este nominado en esta Ronda 2.",
				models.CodeAlreadyVotedNominadoR2)
		}
	}

	return nil
}
