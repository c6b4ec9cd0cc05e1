package handlers

import (
	"fmt"

	"github.com/ThePeem/gala-premios-backend/models"
)

// ComputeStandings aggregates an award's round-2 ballots into the medal
// ranking: oro 3 puntos, plata 2, bronce 1, summed per nominee. The ordering
// is deterministic: points descending, then nominee name ascending, so
// repeated invocations over the same ballots always agree.
func ComputeStandings(db querier, premioID string) ([]models.NominadoPuntos, error) {
	rows, err := db.Query(`
		SELECT n.id, n.nombre,
		       SUM(CASE v.orden_ronda2 WHEN 1 THEN $2 WHEN 2 THEN $3 WHEN 3 THEN $4 ELSE 0 END) AS puntos
		FROM voto v
		JOIN nominado n ON n.id = v.nominado_id
		WHERE v.premio_id = $1 AND v.ronda = 2 AND v.orden_ronda2 IN (1, 2, 3)
		GROUP BY n.id, n.nombre
		ORDER BY puntos DESC, n.nombre ASC
	`, premioID, models.PuntosOro, models.PuntosPlata, models.PuntosBronce)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate round-2 votes: %w", err)
	}
	defer rows.Close()

	standings := []models.NominadoPuntos{}
	for rows.Next() {
		var np models.NominadoPuntos
		if err := rows.Scan(&np.NominadoID, &np.Nombre, &np.Puntos); err != nil {
			return nil, fmt.Errorf("failed to scan standing: %w", err)
		}
		standings = append(standings, np)
	}
	return standings, rows.Err()
}

// medalWinners picks the podium from a computed standing. Fewer than three
// scored nominees leaves the remaining slots nil.
func medalWinners(standings []models.NominadoPuntos) (oro, plata, bronce *string) {
	if len(standings) > 0 {
		oro = &standings[0].NominadoID
	}
	if len(standings) > 1 {
		plata = &standings[1].NominadoID
	}
	if len(standings) > 2 {
		bronce = &standings[2].NominadoID
	}
	return oro, plata, bronce
}
