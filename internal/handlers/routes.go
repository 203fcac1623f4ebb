package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{Users: deps.Users, Sessions: deps.Sessions, LoginLimiter: deps.LoginLimiter}
	videos := VideoHandler{Videos: deps.Videos, Sessions: deps.Sessions}
	uploads := UploadHandler{Sessions: deps.Sessions, Uploads: deps.Uploads}

	mux.HandleFunc("GET /healthz", health.Handle)
	mux.HandleFunc("POST /api/users", auth.Register)
	mux.HandleFunc("POST /api/login", auth.Login)
	mux.HandleFunc("POST /api/refresh", auth.Refresh)
	mux.HandleFunc("POST /api/revoke", auth.Revoke)
	mux.HandleFunc("POST /api/videos", videos.Create)
	mux.HandleFunc("GET /api/videos", videos.List)
	mux.HandleFunc("POST /api/thumbnail_upload/{videoID}", uploads.Thumbnail)
	mux.HandleFunc("POST /api/video_upload/{videoID}", uploads.Video)

	// Local deployments serve stored assets straight off disk. The s3 backend
	// hands out presigned URLs instead and leaves AssetDir empty.
	if deps.AssetDir != "" {
		mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServer(http.Dir(deps.AssetDir))))
	}
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users        UserStore
	Sessions     SessionManager
	Videos       VideoStore
	Uploads      UploadService
	LoginLimiter RateLimiter
	AssetDir     string
}
