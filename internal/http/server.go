package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	Router *chi.Mux
}

func NewServer(handler *Handler) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(cors)
	r.Use(metrics)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/account/register", handler.Register)
	r.Post("/account/login", handler.Login)

	r.Group(func(r chi.Router) {
		r.Use(handler.auth)

		r.Route("/account/settings/notifications", func(r chi.Router) {
			r.Get("/", handler.GetNotificationSettings)
			r.Put("/", handler.UpdateNotificationSettings)
		})
		r.Post("/notifications/mark_as_read", handler.MarkNotificationsRead)

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", handler.SearchTags)
			r.Post("/", handler.CreateTag)
			r.Get("/search", handler.SearchTags)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", handler.ListOrders)
			r.Post("/", handler.CreateOrder)
			r.Get("/customer", handler.ListCustomerOrders)
			r.Get("/contractor", handler.ListContractorOrders)

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", handler.ListCategories)
				r.Post("/", handler.CreateCategory)
				r.Route("/{categoryID}", func(r chi.Router) {
					r.Use(requireUUID("categoryID"))
					r.Get("/", handler.GetCategory)
					r.Put("/", handler.UpdateCategory)
					r.Delete("/", handler.DeleteCategory)
				})
			})

			r.Route("/{orderID}", func(r chi.Router) {
				r.Use(requireUUID("orderID"))
				r.Get("/", handler.GetOrder)
				r.Put("/", handler.UpdateOrder)
				r.Delete("/", handler.DeleteOrder)

				r.Post("/attachments", handler.CreateAttachment)

				r.Route("/applications", func(r chi.Router) {
					r.Get("/", handler.ListApplications)
					r.Post("/", handler.CreateApplication)
					r.Delete("/", handler.WithdrawApplication)
					r.With(requireUUID("applicationID")).Put("/{applicationID}/status", handler.SetApplicationStatus)
				})

				r.Route("/chat", func(r chi.Router) {
					r.Get("/", handler.GetChat)
					r.Get("/ws", handler.ChatFeedSocket)
					r.Route("/messages", func(r chi.Router) {
						r.Get("/", handler.ListMessages)
						r.Post("/", handler.SendMessage)
						r.Put("/read", handler.MarkMessagesRead)
					})
				})
			})
		})
	})

	return &Server{Router: r}
}
