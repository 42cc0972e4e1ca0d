package testfixtures

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"github.com/example/eventshare/internal/api"
)

// Route names used by Fail and Requests.
const (
	RouteVerify         = "verify"
	RouteLogin          = "login"
	RouteSignup         = "signup"
	RouteUpdatePhoto    = "update-photo"
	RouteAlbums         = "albums"
	RouteCreateAlbum    = "create-album"
	RouteDeleteAlbums   = "delete-albums"
	RoutePhotos         = "photos"
	RouteDeletePhotos   = "delete-photos"
	RouteUpload         = "upload"
	RouteShare          = "share"
	RouteGrantAccess    = "grant-access"
	RouteFindMyPhotos   = "find-my-photos"
	RouteEvent          = "event"
	RouteDownload       = "download"
	RouteDownloadZip    = "download-zip"
	RouteCheckPassword  = "check-password"
	RouteSimilarFaces   = "find-similar-faces"
	routeFailureUnknown = ""
)

// RecordedRequest is one request received by the Backend.
type RecordedRequest struct {
	Route         string
	Method        string
	Path          string
	Authorization string
	RequestID     string
	Form          map[string]string
	Files         map[string]string
	JSON          map[string]any
}

type user struct {
	password string
	role     string
	refPhoto string
}

type album struct {
	id       string
	name     string
	password string
	photos   []api.Photo
}

type failure struct {
	call    int
	status  int
	message string
	raw     string
}

// Backend is an in-process fake of the photo backend and the face service,
// served over httptest with a gorilla/mux router.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	users    map[string]*user
	tokens   map[string]string
	albums   map[string][]*album
	access   map[string][]string
	matches  map[string][]api.Photo
	failures map[string][]failure
	calls    map[string]int
	requests []RecordedRequest
	uploads  int
}

// NewBackend starts a Backend that is shut down when the test finishes.
func NewBackend(tb testing.TB) *Backend {
	tb.Helper()

	b := &Backend{
		users:    make(map[string]*user),
		tokens:   make(map[string]string),
		albums:   make(map[string][]*album),
		access:   make(map[string][]string),
		matches:  make(map[string][]api.Photo),
		failures: make(map[string][]failure),
		calls:    make(map[string]int),
	}

	r := mux.NewRouter()
	r.Use(b.intercept)
	r.HandleFunc("/api/auth/verify", b.verify).Methods(http.MethodGet).Name(RouteVerify)
	r.HandleFunc("/api/auth/login", b.login).Methods(http.MethodPost).Name(RouteLogin)
	r.HandleFunc("/api/auth/signup", b.signup).Methods(http.MethodPost).Name(RouteSignup)
	r.HandleFunc("/api/auth/vip-update-photo", b.updatePhoto).Methods(http.MethodPost).Name(RouteUpdatePhoto)
	r.HandleFunc("/api/albums", b.listAlbums).Methods(http.MethodGet).Name(RouteAlbums)
	r.HandleFunc("/api/albums/batch", b.deleteAlbums).Methods(http.MethodDelete).Name(RouteDeleteAlbums)
	r.HandleFunc("/api/albums/{album}/photos", b.listPhotos).Methods(http.MethodGet).Name(RoutePhotos)
	r.HandleFunc("/api/albums/{album}/photos/batch", b.deletePhotos).Methods(http.MethodDelete).Name(RouteDeletePhotos)
	r.HandleFunc("/api/create-album", b.createAlbum).Methods(http.MethodPost).Name(RouteCreateAlbum)
	r.HandleFunc("/api/upload-single-file", b.upload).Methods(http.MethodPost).Name(RouteUpload)
	r.HandleFunc("/api/album/{photographer}/{album}/share", b.share).Methods(http.MethodGet).Name(RouteShare)
	r.HandleFunc("/api/grant-access", b.grantAccess).Methods(http.MethodPost).Name(RouteGrantAccess)
	r.HandleFunc("/api/find-my-photos/{photographer}/{album}", b.findMyPhotos).Methods(http.MethodGet).Name(RouteFindMyPhotos)
	r.HandleFunc("/api/event/{photographer}/{album}", b.eventPhotos).Methods(http.MethodGet).Name(RouteEvent)
	r.HandleFunc("/api/download", b.download).Methods(http.MethodGet).Name(RouteDownload)
	r.HandleFunc("/api/download-zip", b.downloadZip).Methods(http.MethodPost).Name(RouteDownloadZip)
	r.HandleFunc("/api/check-password/{album}", b.checkPassword).Methods(http.MethodPost).Name(RouteCheckPassword)
	r.HandleFunc("/find_similar_faces/", b.similarFaces).Methods(http.MethodPost).Name(RouteSimilarFaces)

	b.Server = httptest.NewServer(r)
	tb.Cleanup(b.Server.Close)
	return b
}

// URL returns the backend base URL.
func (b *Backend) URL() string { return b.Server.URL }

// FaceURL returns the face service base URL, served by the same server.
func (b *Backend) FaceURL() string { return b.Server.URL + "/" }

// AddUser registers an account.
func (b *Backend) AddUser(username, password, role string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[username] = &user{password: password, role: role}
}

// SetReferencePhoto sets the reference photo URL reported for username.
func (b *Backend) SetReferencePhoto(username, url string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if u, ok := b.users[username]; ok {
		u.refPhoto = url
	}
}

// IssueToken returns a valid token for username without a login round trip.
func (b *Backend) IssueToken(username string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	token := "token-" + username
	b.tokens[token] = username
	return token
}

// AddAlbum creates an album owned by photographer with the given photos.
func (b *Backend) AddAlbum(photographer, id, name string, photos ...api.Photo) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.albums[photographer] = append(b.albums[photographer], &album{id: id, name: name, photos: photos})
}

// SetAlbumPassword protects an album for CheckAlbumPassword.
func (b *Backend) SetAlbumPassword(photographer, id, password string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if a := b.findAlbum(photographer, id); a != nil {
		a.password = password
	}
}

// Share gives attendee access to an album.
func (b *Backend) Share(attendee, photographer, albumID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.grant(attendee, photographer, albumID)
}

// SetMatches sets the face search result for an album.
func (b *Backend) SetMatches(photographer, albumID string, matches ...api.Photo) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.matches[photographer+"/"+albumID] = matches
}

// Fail makes the call-th request to route (1-based) answer with status and a
// JSON {"error": message} body. call 0 fails every request.
func (b *Backend) Fail(route string, call, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[route] = append(b.failures[route], failure{call: call, status: status, message: message})
}

// FailRaw is like Fail but writes body verbatim.
func (b *Backend) FailRaw(route string, call, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[route] = append(b.failures[route], failure{call: call, status: status, raw: body})
}

// Requests returns the recorded requests for route, or every request when
// route is empty.
func (b *Backend) Requests(route string) []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RecordedRequest, 0, len(b.requests))
	for _, req := range b.requests {
		if route == "" || req.Route == route {
			out = append(out, req)
		}
	}
	return out
}

// Photos returns the current photos of an album.
func (b *Backend) Photos(photographer, albumID string) []api.Photo {
	b.mu.Lock()
	defer b.mu.Unlock()
	a := b.findAlbum(photographer, albumID)
	if a == nil {
		return nil
	}
	return append([]api.Photo(nil), a.photos...)
}

// AlbumIDs returns the album identifiers owned by photographer.
func (b *Backend) AlbumIDs(photographer string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]string, 0, len(b.albums[photographer]))
	for _, a := range b.albums[photographer] {
		ids = append(ids, a.id)
	}
	return ids
}

// GrantedAlbums returns "photographer/album" entries attendee can access.
func (b *Backend) GrantedAlbums(attendee string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.access[attendee]...)
}

// PhotoURL is the URL the backend reports for a stored photo.
func (b *Backend) PhotoURL(photographer, albumID, photoID string) string {
	return b.Server.URL + "/files/" + api.PhotoKey(photographer, albumID, photoID)
}

func (b *Backend) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := routeFailureUnknown
		if route := mux.CurrentRoute(r); route != nil {
			name = route.GetName()
		}

		rec := RecordedRequest{
			Route:         name,
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		}
		captureBody(r, &rec)

		b.mu.Lock()
		b.calls[name]++
		call := b.calls[name]
		b.requests = append(b.requests, rec)
		injected, failed := b.injectedFailure(name, call)
		b.mu.Unlock()

		if failed {
			if injected.raw != "" || injected.message == "" {
				w.WriteHeader(injected.status)
				_, _ = io.WriteString(w, injected.raw)
				return
			}
			writeJSON(w, injected.status, map[string]string{"error": injected.message})
			return
		}
		next.ServeHTTP(w, withCapture(r, rec))
	})
}

func (b *Backend) injectedFailure(route string, call int) (failure, bool) {
	for _, f := range b.failures[route] {
		if f.call == 0 || f.call == call {
			return f, true
		}
	}
	return failure{}, false
}

type captureKey struct{}

// captureBody reads JSON and multipart bodies into rec so handlers and tests
// share one parse.
func captureBody(r *http.Request, rec *RecordedRequest) {
	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "application/json"):
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err == nil {
			rec.JSON = payload
		}
	case strings.HasPrefix(contentType, "multipart/form-data"):
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return
		}
		rec.Form = make(map[string]string)
		for key, values := range r.MultipartForm.Value {
			if len(values) > 0 {
				rec.Form[key] = values[0]
			}
		}
		rec.Files = make(map[string]string)
		for key, headers := range r.MultipartForm.File {
			if len(headers) == 0 {
				continue
			}
			f, err := headers[0].Open()
			if err != nil {
				continue
			}
			content, _ := io.ReadAll(f)
			_ = f.Close()
			rec.Files[key] = headers[0].Filename + ":" + string(content)
		}
	}
}

func withCapture(r *http.Request, rec RecordedRequest) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), captureKey{}, rec))
}

func captureFromContext(ctx context.Context) RecordedRequest {
	rec, _ := ctx.Value(captureKey{}).(RecordedRequest)
	return rec
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (b *Backend) authenticate(r *http.Request) (string, *user, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	b.mu.Lock()
	defer b.mu.Unlock()
	username, ok := b.tokens[token]
	if !ok {
		return "", nil, false
	}
	u, ok := b.users[username]
	return username, u, ok
}

func (b *Backend) findAlbum(photographer, id string) *album {
	for _, a := range b.albums[photographer] {
		if a.id == id {
			return a
		}
	}
	return nil
}

func (b *Backend) grant(attendee, photographer, albumID string) {
	entry := photographer + "/" + albumID
	for _, existing := range b.access[attendee] {
		if existing == entry {
			return
		}
	}
	b.access[attendee] = append(b.access[attendee], entry)
}

func (b *Backend) verify(w http.ResponseWriter, r *http.Request) {
	username, u, ok := b.authenticate(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"valid": false, "error": "Invalid token"})
		return
	}
	payload := map[string]any{"valid": true, "username": username, "role": u.role, "ref_photo_url": nil}
	if u.refPhoto != "" {
		payload["ref_photo_url"] = u.refPhoto
	}
	writeJSON(w, http.StatusOK, payload)
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	rec := captureFromContext(r.Context())
	username, _ := rec.JSON["username"].(string)
	password, _ := rec.JSON["password"].(string)

	b.mu.Lock()
	u, ok := b.users[username]
	b.mu.Unlock()
	if !ok || u.password != password {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token := b.IssueToken(username)
	payload := map[string]any{"token": token, "username": username, "role": u.role, "ref_photo_url": nil}
	if u.refPhoto != "" {
		payload["ref_photo_url"] = u.refPhoto
	}
	writeJSON(w, http.StatusOK, payload)
}

func (b *Backend) signup(w http.ResponseWriter, r *http.Request) {
	rec := captureFromContext(r.Context())
	username, password := rec.Form["username"], rec.Form["password"]
	if username == "" || password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required.")
		return
	}
	if _, ok := rec.Files["ref_photo"]; !ok {
		writeError(w, http.StatusBadRequest, "A reference photo is required for signup.")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.users[username]; exists {
		writeError(w, http.StatusConflict, "Username already exists.")
		return
	}
	b.users[username] = &user{password: password, role: api.RoleAttendee, refPhoto: b.Server.URL + "/files/user_profiles/" + username}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully!"})
}

func (b *Backend) updatePhoto(w http.ResponseWriter, r *http.Request) {
	username, _, ok := b.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if _, ok := captureFromContext(r.Context()).Files["ref_photo"]; !ok {
		writeError(w, http.StatusBadRequest, "A reference photo is required.")
		return
	}
	b.SetReferencePhoto(username, b.Server.URL+"/files/user_profiles/"+username+"/updated")
	writeJSON(w, http.StatusOK, map[string]string{"message": "Reference photo updated."})
}

func (b *Backend) listAlbums(w http.ResponseWriter, r *http.Request) {
	username, u, ok := b.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	albums := make([]api.Album, 0)
	if u.role == api.RolePhotographer {
		for _, a := range b.albums[username] {
			albums = append(albums, a.summary(""))
		}
	} else {
		for _, entry := range b.access[username] {
			photographer, id, _ := strings.Cut(entry, "/")
			if a := b.findAlbum(photographer, id); a != nil {
				albums = append(albums, a.summary(photographer))
			}
		}
	}
	writeJSON(w, http.StatusOK, albums)
}

func (a *album) summary(photographer string) api.Album {
	out := api.Album{ID: a.id, Name: a.name, PhotoCount: len(a.photos), Photographer: photographer}
	if len(a.photos) > 0 {
		out.Cover = a.photos[0].URL
	}
	return out
}

func (b *Backend) createAlbum(w http.ResponseWriter, r *http.Request) {
	username, u, ok := b.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	if u.role != api.RolePhotographer {
		writeError(w, http.StatusForbidden, "Only photographers can create albums.")
		return
	}
	name, _ := captureFromContext(r.Context()).JSON["name"].(string)
	if name == "" {
		writeError(w, http.StatusBadRequest, "Missing album name")
		return
	}
	id := strings.ReplaceAll(strings.ToLower(name), " ", "-")

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.findAlbum(username, id) != nil {
		writeError(w, http.StatusConflict, "Album already exists.")
		return
	}
	b.albums[username] = append(b.albums[username], &album{id: id, name: name})
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Album created successfully",
		"album":   map[string]string{"id": id, "name": name},
	})
}

func stringList(raw any) []string {
	items, _ := raw.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (b *Backend) deleteAlbums(w http.ResponseWriter, r *http.Request) {
	username, _, ok := b.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	ids := stringList(captureFromContext(r.Context()).JSON["album_ids"])

	b.mu.Lock()
	defer b.mu.Unlock()
	remove := make(map[string]bool, len(ids))
	for _, id := range ids {
		remove[id] = true
	}
	kept := b.albums[username][:0]
	deleted := 0
	for _, a := range b.albums[username] {
		if remove[a.id] {
			deleted++
			continue
		}
		kept = append(kept, a)
	}
	b.albums[username] = kept
	writeJSON(w, http.StatusOK, map[string]int{"deleted_count": deleted})
}

func (b *Backend) listPhotos(w http.ResponseWriter, r *http.Request) {
	username, u, ok := b.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required or failed to fetch photos.")
		return
	}
	if u.role != api.RolePhotographer {
		writeError(w, http.StatusForbidden, "Access denied. Photographers only.")
		return
	}
	writeJSON(w, http.StatusOK, b.photosOrEmpty(username, mux.Vars(r)["album"]))
}

func (b *Backend) photosOrEmpty(photographer, albumID string) []api.Photo {
	photos := b.Photos(photographer, albumID)
	if photos == nil {
		photos = []api.Photo{}
	}
	return photos
}

func (b *Backend) deletePhotos(w http.ResponseWriter, r *http.Request) {
	username, _, ok := b.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	ids := stringList(captureFromContext(r.Context()).JSON["photo_ids"])

	b.mu.Lock()
	defer b.mu.Unlock()
	a := b.findAlbum(username, mux.Vars(r)["album"])
	if a == nil {
		writeError(w, http.StatusNotFound, "Album not found.")
		return
	}
	remove := make(map[string]bool, len(ids))
	for _, id := range ids {
		remove[id] = true
	}
	kept := a.photos[:0]
	deleted := 0
	for _, p := range a.photos {
		if remove[p.ID] {
			deleted++
			continue
		}
		kept = append(kept, p)
	}
	a.photos = kept
	writeJSON(w, http.StatusOK, map[string]int{"deleted_count": deleted})
}

func (b *Backend) upload(w http.ResponseWriter, r *http.Request) {
	username, u, ok := b.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	if u.role != api.RolePhotographer {
		writeError(w, http.StatusForbidden, "Only photographers can upload photos.")
		return
	}
	rec := captureFromContext(r.Context())
	file, ok := rec.Files["file"]
	if !ok {
		writeError(w, http.StatusBadRequest, "No file part")
		return
	}
	albumID := rec.Form["album"]
	if albumID == "" {
		writeError(w, http.StatusBadRequest, "Album ID is missing")
		return
	}
	filename, _, _ := strings.Cut(file, ":")

	b.mu.Lock()
	defer b.mu.Unlock()
	a := b.findAlbum(username, albumID)
	if a == nil {
		writeError(w, http.StatusNotFound, "Album not found.")
		return
	}
	b.uploads++
	id := fmt.Sprintf("%03d_%s", b.uploads, filename)
	photo := api.Photo{ID: id, Name: id, URL: b.Server.URL + "/files/" + api.PhotoKey(username, albumID, id)}
	a.photos = append(a.photos, photo)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "name": filename, "url": photo.URL, "id": id})
}

func (b *Backend) share(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := b.authenticate(r); !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required to generate share links.")
		return
	}
	vars := mux.Vars(r)
	base := fmt.Sprintf("%s/event.html?photographer=%s&album=%s", b.Server.URL, vars["photographer"], vars["album"])
	writeJSON(w, http.StatusOK, map[string]string{
		"vip_link":         base + "&type=vip",
		"full_access_link": base + "&type=full",
	})
}

func (b *Backend) grantAccess(w http.ResponseWriter, r *http.Request) {
	username, _, ok := b.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	rec := captureFromContext(r.Context())
	photographer, _ := rec.JSON["photographer"].(string)
	albumID, _ := rec.JSON["album_id"].(string)
	if photographer == "" || albumID == "" {
		writeError(w, http.StatusBadRequest, "Photographer and Album ID are required.")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.findAlbum(photographer, albumID) == nil {
		writeError(w, http.StatusNotFound, "Album not found.")
		return
	}
	b.grant(username, photographer, albumID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Access granted."})
}

func (b *Backend) findMyPhotos(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := b.authenticate(r); !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}
	vars := mux.Vars(r)
	b.writeMatches(w, vars["photographer"]+"/"+vars["album"])
}

func (b *Backend) writeMatches(w http.ResponseWriter, key string) {
	b.mu.Lock()
	matches := append([]api.Photo{}, b.matches[key]...)
	b.mu.Unlock()

	out := make([]map[string]any, 0, len(matches))
	for _, m := range matches {
		entry := map[string]any{"url": m.URL, "score": m.Score}
		if m.ID != "" {
			entry["id"] = m.ID
		}
		if m.Name != "" {
			entry["name"] = m.Name
		}
		out = append(out, entry)
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": out})
}

func (b *Backend) eventPhotos(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	writeJSON(w, http.StatusOK, b.photosOrEmpty(vars["photographer"], vars["album"]))
}

func (b *Backend) download(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "Missing key")
		return
	}
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		filename = path.Base(key)
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = io.WriteString(w, PhotoContent(key))
}

func (b *Backend) downloadZip(w http.ResponseWriter, r *http.Request) {
	rec := captureFromContext(r.Context())
	keys := stringList(rec.JSON["photo_keys"])
	if len(keys) == 0 {
		writeError(w, http.StatusBadRequest, "No photos selected")
		return
	}
	sort.Strings(keys)

	w.Header().Set("Content-Type", "application/zip")
	zw := zip.NewWriter(w)
	for _, key := range keys {
		entry, err := zw.Create(path.Base(key))
		if err != nil {
			return
		}
		_, _ = io.WriteString(entry, PhotoContent(key))
	}
	_ = zw.Close()
}

func (b *Backend) checkPassword(w http.ResponseWriter, r *http.Request) {
	albumID := mux.Vars(r)["album"]
	password, _ := captureFromContext(r.Context()).JSON["password"].(string)

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, albums := range b.albums {
		for _, a := range albums {
			if a.id != albumID {
				continue
			}
			if a.password != "" && a.password != password {
				writeError(w, http.StatusUnauthorized, "Invalid password")
				return
			}
			writeJSON(w, http.StatusOK, map[string]bool{"success": true})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Album not found")
}

func (b *Backend) similarFaces(w http.ResponseWriter, r *http.Request) {
	rec := captureFromContext(r.Context())
	embedding := rec.Form["embedding_file"]
	if _, ok := rec.Files["file"]; !ok || embedding == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "file and embedding_file are required"})
		return
	}
	key := strings.TrimSuffix(embedding, "_embeddings.json")
	photographer, albumID, _ := strings.Cut(key, "-")
	b.writeMatches(w, photographer+"/"+albumID)
}

// PhotoContent is the body the backend serves for a photo key.
func PhotoContent(key string) string {
	return "photo:" + key
}
