package main

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog"

	"github.com/quietfold/the-journal/internal/cache"
	"github.com/quietfold/the-journal/internal/config"
	"github.com/quietfold/the-journal/internal/feed"
	"github.com/quietfold/the-journal/internal/logger"
	"github.com/quietfold/the-journal/internal/model"
	"github.com/quietfold/the-journal/internal/render"
	"github.com/quietfold/the-journal/internal/repository"
	"github.com/quietfold/the-journal/internal/routes"
	"github.com/quietfold/the-journal/internal/scheme"
	"github.com/quietfold/the-journal/internal/sse"
	"github.com/quietfold/the-journal/internal/store"
	"github.com/quietfold/the-journal/internal/theme"
	"github.com/quietfold/the-journal/internal/util"
)

//go:embed static/* templates/*
var content embed.FS

var mainLogger zerolog.Logger

var clients = sse.NewClients()

var postRepository repository.PostRepository
var themeController *theme.Controller

func main() {
	godotenv.Load()

	cfgPath := "config.yaml"
	if v := os.Getenv("JOURNAL_CONFIG"); v != "" {
		cfgPath = v
	}

	config.SetLogger(logger.New("info"))
	if err := config.LoadConfig(cfgPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	mainLogger = logger.New(config.AppConfig.Logging.Level)
	config.SetLogger(mainLogger)
	store.SetLogger(mainLogger)
	scheme.SetLogger(mainLogger)
	theme.SetLogger(mainLogger)
	repository.SetLogger(mainLogger)
	render.SetLogger(mainLogger)

	settings := openSettings()
	defer settings.Close()

	themeController = theme.NewController(settings, openSchemeSource(), theme.ApplierFunc(applyScheme))
	themeController.Initialize()

	postRepository = openPostRepository()
	if err := postRepository.Init(); err != nil {
		mainLogger.Fatal().Err(err).Msg("Error initializing posts")
	}
	defer postRepository.Close()
	postRepository.SetReloadNotifier(handleReloadPost)

	// Calculate the hash of static content for ETags
	static, _ := fs.Sub(content, config.StaticLocalDir)
	fs.WalkDir(static, ".", func(path string, d fs.DirEntry, err error) error {
		if !d.IsDir() {
			data, err := fs.ReadFile(static, path)
			if err != nil {
				return err
			}
			cache.SetStaticHash(config.StaticUrlPath+path, util.ContentHash(data))
		}
		return nil
	})

	mux := http.NewServeMux()

	mux.HandleFunc(routes.RobotsPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCType, "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("User-agent: *\nDisallow:"))
	})

	mux.Handle(config.StaticUrlPath, http.StripPrefix(config.StaticUrlPath, http.FileServer(http.FS(static))))
	mux.HandleFunc("GET "+routes.PostPath, servePost)
	mux.HandleFunc("POST "+routes.ThemeSet, serveThemeSet)
	mux.HandleFunc("POST "+routes.SyntaxThemeSet, serveSyntaxThemeSet)
	mux.HandleFunc("GET "+routes.SyntaxThemeGet, serveSyntaxThemeGet)
	mux.HandleFunc("GET "+routes.FeedPath, serveFeed)
	mux.HandleFunc(routes.SSEPath, eventsHandler)
	mux.HandleFunc(routes.RootPath, serveIndex)

	handler := gzhttp.GzipHandler(cacheIt(secureHeaders(mux.ServeHTTP)))

	addr := config.AppConfig.Server.Host + ":" + config.AppConfig.Server.Port
	mainLogger.Info().
		Str("addr", addr).
		Str("environment", config.Environment()).
		Msg("Listening")
	if err := http.ListenAndServe(addr, handler); err != nil {
		mainLogger.Fatal().Err(err).Msg("Server stopped")
	}
}

// openSettings opens the SQLite settings store, degrading to an in-memory
// store when it is unavailable: the theme preference then simply resets to
// its default on every restart.
func openSettings() store.Store {
	settings, err := store.NewSQLiteStore(config.AppConfig.Storage.SettingsDB)
	if err != nil {
		mainLogger.Warn().Err(err).Msg("Settings store unavailable, preferences will not persist")
		return store.NewMemoryStore()
	}
	return settings
}

func openSchemeSource() scheme.Source {
	fallback := scheme.Dark
	if config.AppConfig.Theme.FallbackScheme == string(scheme.Light) {
		fallback = scheme.Light
	}

	src, err := scheme.NewPortalSource(fallback)
	if err != nil {
		mainLogger.Info().Err(err).Msg("Desktop portal unavailable, using static color scheme")
		return scheme.NewStaticSource(fallback)
	}
	return src
}

func openPostRepository() repository.PostRepository {
	switch config.AppConfig.Storage.Source {
	case "s3":
		repo, err := repository.NewS3PostRepository(
			os.Getenv("S3_ACCESS_KEY_ID"),
			os.Getenv("S3_SECRET_ACCESS_KEY"),
			config.AppConfig.Storage.S3.Bucket,
			config.AppConfig.Storage.S3.Endpoint,
		)
		if err != nil {
			mainLogger.Fatal().Err(err).Msg("Error creating S3 post repository")
		}
		return repo
	default:
		return repository.NewFSPostRepository(config.AppConfig.Content.PostsDir)
	}
}

// applyScheme pushes a new effective scheme to every connected page so open
// tabs update their data-theme attribute without a reload.
func applyScheme(s scheme.Scheme) {
	go clients.BroadcastAll("theme:" + string(s))
}

func handleReloadPost(slug model.Slug) {
	go clients.Broadcast(slug, "reload")
}

func cacheIt(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCacheControl, "no-cache")
		w.Header().Set("Vary", "Cookie")

		// Static files get a real cache window keyed by content hash
		if hash, ok := cache.GetStaticHash(r.URL.Path); ok {
			w.Header().Set(config.HCacheControl, "public, max-age=3600")
			w.Header().Set(config.HETag, hash)
		}

		h(w, r)
	}
}

func secureHeaders(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-Content-Type-Options", "nosniff")

		h(w, r)
	}
}

func serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != routes.RootPath {
		http.NotFound(w, r)
		return
	}

	posts := postRepository.List()

	tmpl, err := template.ParseFS(content,
		config.TemplatesLocalDir+"/"+config.TemplateLayout,
		config.TemplatesLocalDir+"/"+config.TemplateIndex)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := struct {
		*model.PageData
		Posts []model.Post
	}{
		PageData: model.NewPageData(r, themeController),
		Posts:    posts,
	}

	w.Header().Set(config.HETag, util.ContentHash([]byte(data.Theme+data.SyntaxTheme)))

	if err := tmpl.ExecuteTemplate(w, config.TemplateLayout, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func servePost(w http.ResponseWriter, r *http.Request) {
	slug := model.Slug(r.PathValue("slug"))
	if slug == "" {
		http.NotFound(w, r)
		return
	}

	post, err := postRepository.Get(slug)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if post.Draft && !config.ShowDrafts() {
		http.NotFound(w, r)
		return
	}

	rendered := render.RenderMarkdownCached(post.Markdown, post.MDContentHash,
		theme.SyntaxThemeFromRequest(r, themeController))

	page := *post
	page.Content = template.HTML(rendered)

	data := struct {
		*model.PageData
		Post *model.Post
	}{
		PageData: model.NewPageData(r, themeController),
		Post:     &page,
	}
	data.PostSlug = string(slug)

	tmpl, err := template.ParseFS(content,
		config.TemplatesLocalDir+"/"+config.TemplateLayout,
		config.TemplatesLocalDir+"/"+config.TemplatePost)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := tmpl.ExecuteTemplate(w, config.TemplateLayout, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func serveThemeSet(w http.ResponseWriter, r *http.Request) {
	pref, ok := theme.ParsePreference(r.FormValue("theme"))
	if !ok {
		http.Error(w, "theme must be light, dark or auto", http.StatusBadRequest)
		return
	}

	if !config.AppConfig.Theme.AllowSwitching {
		http.Error(w, "theme switching is disabled", http.StatusForbidden)
		return
	}

	themeController.SetPreference(pref)

	http.SetCookie(w, &http.Cookie{
		Name:  config.CookieTheme,
		Value: string(pref),
		Path:  "/",
	})

	effective := themeController.Effective()
	if pref != theme.PreferenceAuto {
		effective = scheme.Scheme(pref)
	}

	w.Header().Set(config.HHxTrigger, fmt.Sprintf(
		`{"themeChanged":{"value":"%s","preference":"%s","syntaxTheme":"%s"}}`,
		effective, pref, theme.DefaultSyntaxTheme(effective)))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(theme.Icon(pref)))
}

func serveSyntaxThemeSet(w http.ResponseWriter, r *http.Request) {
	currTheme := r.FormValue("syntax-theme-select")
	if currTheme == "" {
		http.Error(w, "theme required", http.StatusBadRequest)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.CookieSyntaxTheme,
		Value:    currTheme,
		Path:     "/",
		HttpOnly: true,
	})

	themeStyle := []byte(theme.GenerateSyntaxCSS(currTheme))
	w.Header().Set(config.HCType, config.CTypeCSS)
	w.Header().Set(config.HETag, util.ContentHash(themeStyle))
	w.WriteHeader(http.StatusOK)
	w.Write(themeStyle)
}

func serveSyntaxThemeGet(w http.ResponseWriter, r *http.Request) {
	themeStyle := []byte(theme.GenerateSyntaxCSS(r.PathValue("theme")))
	w.Header().Set(config.HCType, config.CTypeCSS)
	w.Header().Set(config.HETag, util.ContentHash(themeStyle))
	w.WriteHeader(http.StatusOK)
	w.Write(themeStyle)
}

func serveFeed(w http.ResponseWriter, r *http.Request) {
	out, err := feed.Build(
		config.AppConfig.Site.Name,
		config.AppConfig.Site.Description,
		config.AppConfig.Site.BaseURL,
		postRepository.List(),
	)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HCType, config.CTypeRSS)
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

func eventsHandler(w http.ResponseWriter, r *http.Request) {
	slug := model.Slug(r.URL.Query().Get("post"))

	w.Header().Set(config.HCType, "text/event-stream")
	w.Header().Set(config.HCacheControl, "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Del("X-Content-Type-Options")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	fmt.Fprintf(w, "event: connected\ndata: SSE connection established\n\n")
	flusher.Flush()

	client := sse.NewClient(slug)
	clients.Add(client)

	mainLogger.Debug().Str("client", client.ID.String()).Msg("SSE client connected")

	defer func() {
		clients.Delete(client)
		mainLogger.Debug().Str("client", client.ID.String()).Msg("SSE client disconnected")
	}()

	notify := r.Context().Done()
	for {
		select {
		case msg := <-client.Msg:
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		case <-notify:
			return
		}
	}
}
