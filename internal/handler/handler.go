package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/config"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/repository"
)

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	store      repository.Store
	translator ut.Translator
	revoker    TokenRevoker
	mailer     MailPublisher

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, store repository.Store, revoker TokenRevoker, mailer MailPublisher) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		store:      store,
		translator: trans,
		revoker:    revoker,
		mailer:     mailer,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)
	h.Mux.Use(h.cors)

	h.Mux.Get("/health", h.Health)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.SignUp)
		r.Post("/signin", h.SignIn)
		r.With(h.auth).Post("/signout", h.SignOut)
		r.With(h.auth, h.myInfo).Get("/me", h.GetMyInfo)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/assets", func(r chi.Router) {
			r.Post("/add", h.CreateAsset)
			r.Put("/update/{id}", h.UpdateAsset)
			r.Get("/", h.GetAllAssets)
			r.Delete("/delete/{id}", h.DeleteAsset)
			r.Get("/stats", h.GetAssetStats)
			r.Get("/recent", h.GetRecentAssets)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/inventory", h.DownloadInventoryReport)
			r.With(h.myInfo).Post("/inventory/email", h.EmailInventoryReport)
		})
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, envelope{"success": true, "message": "ok"})
}
