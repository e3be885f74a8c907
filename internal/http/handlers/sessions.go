package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"adstudio/internal/domain"
	"adstudio/internal/providers/image"
	"adstudio/internal/studio"
	"adstudio/pkg/zip"
)

// maxUploadBytes caps the multipart submission, comfortably above typical
// product photos.
const maxUploadBytes = 16 << 20

// generationTimeout bounds one whole background batch, including the
// sequential per-type image calls and their fixed delays.
const generationTimeout = 10 * time.Minute

type sessionCreatedResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

type rateRequest struct {
	Value int `json:"value"`
}

// SubmitSession accepts a multipart form with a product description and an
// uploaded image, then runs the generation batch in the background. Validation
// failures are rejected before any network call.
func (a *App) SubmitSession(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}
	description := strings.TrimSpace(r.FormValue("description"))
	if description == "" {
		a.error(w, http.StatusBadRequest, "validation", "description is required")
		return
	}
	source, err := a.sourceFromForm(r)
	if err != nil {
		a.error(w, http.StatusBadRequest, "validation", "an image upload or image_url is required")
		return
	}

	sess := a.newSession()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), generationTimeout)
		defer cancel()
		if err := a.Studio.Generate(ctx, sess, description, source); err != nil {
			a.Logger.Error().Err(err).Str("session_id", sess.ID()).Msg("generation rejected")
		}
	}()

	a.json(w, http.StatusAccepted, sessionCreatedResponse{SessionID: sess.ID(), Status: "GENERATING"})
}

// GetSession returns the current snapshot: phase, loading flag, cosmetic
// progress, error banner message, and the ad collection.
func (a *App) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, sess.Snapshot())
}

// RateAd stores a 1-5 rating on one ad. Out-of-range values never reach the
// orchestrator.
func (a *App) RateAd(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	var req rateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Value < domain.MinRating || req.Value > domain.MaxRating {
		a.error(w, http.StatusBadRequest, "validation", "rating must be between 1 and 5")
		return
	}
	adID := chi.URLParam(r, "ad_id")
	if err := sess.Rate(adID, req.Value); err != nil {
		a.error(w, http.StatusNotFound, "not_found", "ad not found")
		return
	}
	a.json(w, http.StatusOK, sess.Snapshot())
}

// RegenerateAd reruns enhancement plus a single image request for one ad in
// the background. Failures degrade to a placeholder inside the studio; this
// endpoint never reports them.
func (a *App) RegenerateAd(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	adID := chi.URLParam(r, "ad_id")
	if _, found := sess.Ad(adID); !found {
		a.error(w, http.StatusNotFound, "not_found", "ad not found")
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), generationTimeout)
		defer cancel()
		a.Studio.Regenerate(ctx, sess, adID)
	}()
	a.json(w, http.StatusAccepted, map[string]string{"ad_id": adID, "status": "REGENERATING"})
}

// DownloadAd serves an embedded image inline, or redirects to the remote
// locator.
func (a *App) DownloadAd(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	ad, found := sess.Ad(chi.URLParam(r, "ad_id"))
	if !found {
		a.error(w, http.StatusNotFound, "not_found", "ad not found")
		return
	}
	data, mime, ok := decodeEmbedded(ad.ImageURL)
	if !ok {
		http.Redirect(w, r, ad.ImageURL, http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadFilename(ad)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// DownloadBatch ships every ad in one archive: embedded images as binaries,
// remote ones as locator text entries.
func (a *App) DownloadBatch(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	snapshot := sess.Snapshot()
	if len(snapshot.Ads) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "no ads generated yet")
		return
	}
	assets := make([]zip.Asset, 0, len(snapshot.Ads))
	for _, ad := range snapshot.Ads {
		if data, mime, ok := decodeEmbedded(ad.ImageURL); ok {
			assets = append(assets, zip.Asset{Filename: downloadFilename(ad), MIME: mime, Data: data})
			continue
		}
		assets = append(assets, zip.Asset{
			Filename: ad.ID + ".url.txt",
			MIME:     "text/plain",
			Data:     []byte(ad.ImageURL),
		})
	}
	archive := zip.ArchiveAssets(assets)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=ads-%s.zip", snapshot.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func (a *App) session(w http.ResponseWriter, r *http.Request) (*studio.Session, bool) {
	id := chi.URLParam(r, "session_id")
	if id == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "session_id required")
		return nil, false
	}
	sess, ok := a.Sessions.Get(id)
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "session not found")
		return nil, false
	}
	return sess, true
}

func (a *App) sourceFromForm(r *http.Request) (image.SourceImage, error) {
	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		data, readErr := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if readErr != nil || len(data) == 0 {
			return image.SourceImage{}, domain.ErrInvalidInput
		}
		return image.SourceImage{
			Data:     data,
			MIME:     header.Header.Get("Content-Type"),
			Filename: header.Filename,
		}, nil
	}
	if ref := strings.TrimSpace(r.FormValue("image_url")); ref != "" {
		return image.SourceImage{URL: ref}, nil
	}
	return image.SourceImage{}, domain.ErrInvalidInput
}

func (a *App) newSession() *studio.Session {
	sess := studio.NewSession()
	a.Sessions.Put(sess)
	return sess
}

// decodeEmbedded extracts bytes from a data: URI locator.
func decodeEmbedded(locator string) ([]byte, string, bool) {
	if !strings.HasPrefix(locator, "data:") {
		return nil, "", false
	}
	meta, payload, found := strings.Cut(strings.TrimPrefix(locator, "data:"), ",")
	if !found || !strings.HasSuffix(meta, ";base64") {
		return nil, "", false
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, "", false
	}
	mime := strings.TrimSuffix(meta, ";base64")
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/png"
	}
	return data, mime, true
}

// downloadFilename derives a human-friendly filename from the ad-type label.
func downloadFilename(ad domain.GeneratedAd) string {
	label := strings.TrimSpace(ad.AdType)
	if label == "" {
		label = "Generated Ad"
	}
	label = cases.Title(language.Und).String(strings.ToLower(label))
	return fmt.Sprintf("%s %s.png", label, shortID(ad.ID))
}

func shortID(id string) string {
	if idx := strings.LastIndex(id, "-"); idx >= 0 && idx+1 < len(id) {
		return id[idx+1:]
	}
	return id
}
