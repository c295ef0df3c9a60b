package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"masjid/internal/mosque/models"
	mosqueservice "masjid/internal/mosque/service"
	mosquestore "masjid/internal/mosque/store"
	"masjid/internal/platform/database"
	"masjid/internal/sanitize"
	"masjid/pkg/domain"
	auditpostgres "masjid/pkg/platform/audit/store/postgres"
)

// seedFile is the YAML layout accepted by `masjidctl seed`.
type seedFile struct {
	Mosques []seedRecord `yaml:"mosques"`
}

type seedRecord struct {
	ArabicName       string         `yaml:"arabic_name"`
	Type             *string        `yaml:"type"`
	Governorate      string         `yaml:"governorate"`
	Delegation       *string        `yaml:"delegation"`
	City             *string        `yaml:"city"`
	Address          *string        `yaml:"address"`
	Latitude         *float64       `yaml:"latitude"`
	Longitude        *float64       `yaml:"longitude"`
	Facilities       map[string]any `yaml:"facilities"`
	IqamaTimes       map[string]any `yaml:"iqama_times"`
	JumuahTime       *string        `yaml:"jumuah_time"`
	EidInfo          *string        `yaml:"eid_info"`
	MuazzinName      *string        `yaml:"muazzin_name"`
	Imam5PrayersName *string        `yaml:"imam_5_prayers_name"`
	ImamJumuaName    *string        `yaml:"imam_jumua_name"`
	ImageURL         *string        `yaml:"image_url"`
}

func (r seedRecord) details() models.Details {
	return models.Details{
		ArabicName:       r.ArabicName,
		Type:             r.Type,
		Governorate:      r.Governorate,
		Delegation:       r.Delegation,
		City:             r.City,
		Address:          r.Address,
		Latitude:         r.Latitude,
		Longitude:        r.Longitude,
		Facilities:       sanitize.Facilities(r.Facilities),
		IqamaTimes:       sanitize.PrayerTimes(r.IqamaTimes, sanitize.ContextRecord),
		JumuahTime:       r.JumuahTime,
		EidInfo:          r.EidInfo,
		MuazzinName:      r.MuazzinName,
		Imam5PrayersName: r.Imam5PrayersName,
		ImamJumuaName:    r.ImamJumuaName,
		ImageURL:         r.ImageURL,
	}
}

func parseSeed(r io.Reader) ([]models.Details, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	out := make([]models.Details, 0, len(f.Mosques))
	for _, rec := range f.Mosques {
		out = append(out, rec.details())
	}
	return out, nil
}

func seedCommand(a *app) *cobra.Command {
	var (
		file  string
		bulk  bool
		actor int64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import trusted, approved mosques from a YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			fh, err := os.Open(file)
			if err != nil {
				return err
			}
			defer fh.Close()
			records, err := parseSeed(fh)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				a.log.Info("seed file has no records", "file", file)
				return nil
			}

			if bulk {
				conn, err := pgx.Connect(ctx, a.cfg.Database.URL)
				if err != nil {
					return fmt.Errorf("connect: %w", err)
				}
				defer conn.Close(ctx)
				n, err := mosquestore.CopyApproved(ctx, conn, records, time.Now().UTC())
				if err != nil {
					return err
				}
				a.log.Info("bulk seed complete", "rows", n)
				return nil
			}

			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()
			svc := mosqueservice.New(mosquestore.NewPostgres(db), database.NewTxRunner(db, a.cfg.Database.TxTimeout),
				mosqueservice.WithAudit(auditpostgres.New(db)),
				mosqueservice.WithLogger(a.log),
			)
			ids, err := svc.Import(ctx, domain.Principal{UserID: domain.UserID(actor), Role: domain.RoleAdmin}, records)
			if err != nil {
				return err
			}
			a.log.Info("seed complete", "imported", len(ids))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "mosques.yaml", "YAML file with a top-level mosques list")
	cmd.Flags().BoolVar(&bulk, "bulk", false, "load with COPY; skips per-record audit events")
	cmd.Flags().Int64Var(&actor, "actor", 1, "user id recorded as the importing admin")
	return cmd
}
