package handler

import (
	"context"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/temmie0232/ShiftManager/internal/config"
	"github.com/temmie0232/ShiftManager/internal/domain"
	"github.com/temmie0232/ShiftManager/internal/planning"
	"github.com/temmie0232/ShiftManager/internal/repository"
)

// Notifier 把通知投递到消息队列
type Notifier interface {
	Publish(ctx context.Context, msg *domain.NotificationMessage) error
}

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	repository *repository.Repository
	planner    *planning.Service
	notifier   Notifier
	translator ut.Translator

	Mux *chi.Mux
}

var clockRX = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, err
	}

	// clock: HH:MM 格式的时刻
	if err := validate.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockRX.MatchString(fl.Field().String())
	}); err != nil {
		return nil, nil, err
	}
	if err := validate.RegisterTranslation("clock", trans, func(ut ut.Translator) error {
		return ut.Add("clock", "{0}必须是 HH:MM 格式的时间", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("clock", fe.Field())
		return t
	}); err != nil {
		return nil, nil, err
	}

	return validate, trans, nil
}

func NewHandler(cfg *config.Config, repo *repository.Repository, planner *planning.Service, notifier Notifier) (*Handler, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		repository: repo,
		planner:    planner,
		notifier:   notifier,
		translator: trans,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)
	h.Mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	managerOnly := h.RequiredRole([]domain.Role{domain.RoleManager})

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Use(h.myInfo)

		r.Get("/me", h.GetMyInfo)

		r.Route("/employees", func(r chi.Router) {
			r.With(managerOnly).Post("/", h.CreateEmployee)
			r.With(managerOnly).Get("/", h.GetAllEmployees)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.employeeInfo)
				r.Use(h.selfOrManager)
				r.Get("/", h.GetEmployee)
				r.With(managerOnly).With(h.preventOperateInitialAdmin).Patch("/", h.UpdateEmployee)
				r.With(managerOnly).With(h.preventOperateInitialAdmin).Delete("/", h.DeleteEmployee)
				r.Put("/pin", h.UpdateEmployeePIN)

				r.Route("/presets", func(r chi.Router) {
					r.Get("/", h.GetPresets)
					r.Post("/", h.CreatePreset)
					r.Route("/{presetID}", func(r chi.Router) {
						r.Use(h.timePreset)
						r.Get("/", h.GetPreset)
						r.Patch("/", h.UpdatePreset)
						r.Delete("/", h.DeletePreset)
					})
				})

				r.Route("/periods/{period}", func(r chi.Router) {
					r.Use(h.shiftKey)
					r.Get("/status", h.GetSubmissionStatus)
					r.Get("/draft", h.GetDraft)
					r.Group(func(r chi.Router) {
						r.Use(h.preventInactiveEmployee)
						r.Patch("/draft", h.UpdateDraft)
						r.Put("/draft/details", h.ReplaceDraftDetails)
						r.Post("/submit", h.SubmitShiftRequest)
					})
				})

				r.Get("/history", h.GetHistory)
			})
		})

		// 只有店长能查看和删除所有人的提交
		r.Route("/shift-requests", func(r chi.Router) {
			r.Use(managerOnly)
			r.Get("/", h.GetShiftRequestsByPeriod)
			r.Delete("/{requestID}", h.DeleteShiftRequest)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(managerOnly)
			r.Post("/shift-form", h.SendShiftForm)
			r.Get("/shift-form/template", h.GetShiftFormTemplate)
			r.Post("/shift-document", h.SendShiftDocument)
			r.Get("/shift-documents", h.GetShiftDocuments)
		})
	})
}
