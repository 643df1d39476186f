package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"brokershare-service/internal/config"
	"brokershare-service/internal/fileio"
	"brokershare-service/internal/marketshare/model"
	"brokershare-service/internal/marketshare/schema"
	msSvc "brokershare-service/internal/marketshare/service"
	"brokershare-service/internal/middleware"
)

// Analyze returns an http.HandlerFunc so the router can mount it as
// r.Post("/analyze", msHnd.Analyze(cfg, logger)).
func Analyze(cfg config.Config, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// bind the request ID the middleware generated (or passed through)
		log := logger
		if rid := middleware.GetRequestID(r); rid != "" {
			log = logger.With().Str("req_id", rid).Logger()
		}

		defer r.Body.Close()
		if err := r.ParseMultipartForm(int64(cfg.MaxUploadMB) << 20); err != nil {
			http.Error(w, "bad multipart form: "+err.Error(), http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "missing file: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		// one file per invocation, fully buffered before parsing
		rows, err := fileio.ReadGrid(file, header.Filename)
		if err != nil {
			log.Warn().Err(err).Str("filename", header.Filename).Msg("unreadable input")
			http.Error(w, inputHint(err), http.StatusBadRequest)
			return
		}

		// the configured canonical label only applies to the configured
		// subject; an overridden subject without its own label keeps the
		// sheet's original brand text
		subject := strings.TrimSpace(r.FormValue("subject"))
		subjectLabel := strings.TrimSpace(r.FormValue("subject_label"))
		if subject == "" {
			subject = cfg.SubjectBrand
			subjectLabel = pick(subjectLabel, cfg.SubjectLabel)
		}
		opt := model.Options{
			Subject:      subject,
			SubjectLabel: subjectLabel,
			TopN:         clamp(atoi(r.FormValue("top_n"), cfg.TopN), 1, 100),
		}

		cols := schema.Detect(rows)
		res, snap := msSvc.Run(rows, cols, opt, log)
		rep := msSvc.BuildReport(res, snap, opt)

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			log.Error().Err(err).Msg("write json")
			return
		}

		log.Info().
			Int("rows", len(rows)).
			Int("records", len(res.Records)).
			Int("brand_col", cols.Brand).
			Int("share_col", cols.MarketShare).
			Dur("elapsed", time.Since(start)).
			Msg("analyze done")
	}
}

// inputHint: single human-readable message describing the expected shape
// so the user can correct the source file.
func inputHint(err error) string {
	return "failed to read file: " + err.Error() +
		`. Expected a spreadsheet with brokerage names in a brand column and ` +
		`market share in a "Mkt %" or "$ Vol Per Prod Agent" column.`
}
