package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"masjid/internal/mosque/models"
)

// Copier is the COPY entry point of a pgx connection or pool.
type Copier interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// CopyApproved bulk loads trusted records with COPY. Records are canonicalized
// first; rows without a name are refused before anything is sent.
func CopyApproved(ctx context.Context, conn Copier, records []models.Details, now time.Time) (int64, error) {
	rows := make([][]any, 0, len(records))
	for i, d := range records {
		row, err := copyRow(models.Canonical(d), now)
		if err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	columns := append(append([]string{}, DetailColumns...), "approved", "created_at", "updated_at")
	n, err := conn.CopyFrom(ctx, pgx.Identifier{"mosques"}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy mosques: %w", err)
	}
	return n, nil
}

func copyRow(d models.Details, now time.Time) ([]any, error) {
	if d.ArabicName == "" {
		return nil, fmt.Errorf("arabic_name is required")
	}
	facilities, err := json.Marshal(nonNilBool(d.Facilities))
	if err != nil {
		return nil, fmt.Errorf("marshal facilities: %w", err)
	}
	iqama, err := json.Marshal(nonNilString(d.IqamaTimes))
	if err != nil {
		return nil, fmt.Errorf("marshal iqama times: %w", err)
	}
	return []any{
		d.ArabicName, d.Type, d.Governorate, d.Delegation,
		d.City, d.Address, d.Latitude, d.Longitude,
		json.RawMessage(facilities), json.RawMessage(iqama), d.JumuahTime, d.EidInfo,
		d.MuazzinName, d.Imam5PrayersName, d.ImamJumuaName, d.ImageURL,
		true, now, now,
	}, nil
}
