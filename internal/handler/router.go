package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/HasanDroid18/SAWA-Backend/internal/middleware"
	"github.com/HasanDroid18/SAWA-Backend/internal/model"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса SAWA.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	requireAdmin := custommiddleware.RequireRole(h.service, model.RoleAdmin)
	requireStaff := custommiddleware.RequireRole(h.service, model.RoleAdmin, model.RoleSubAdmin)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/signin", h.Signin)
		r.Post("/signout", h.Signout)
		r.Patch("/send-forgot-password-code", h.SendForgotPasswordCode)
		r.Patch("/verify-forgot-password-code", h.VerifyForgotPasswordCode)

		r.Group(func(r chi.Router) {
			r.Use(h.identifier.Middleware)

			r.Patch("/change-password", h.ChangePassword)
			r.Patch("/update-profile", h.UpdateProfile)

			r.With(requireAdmin).Get("/users", h.GetUsers)
			r.With(requireStaff).Get("/users/{id}", h.GetUser)
			r.With(requireAdmin).Delete("/delete-user/{id}", h.DeleteUser)
			r.With(requireAdmin).Patch("/update-user-role/{id}", h.UpdateUserRole)
		})
	})

	r.Route("/api/donations", func(r chi.Router) {
		r.Get("/get-all-donations", h.GetAllDonations)
		r.Get("/get-donation/{id}", h.GetDonation)

		r.Group(func(r chi.Router) {
			r.Use(h.identifier.Middleware)

			r.Post("/request-donation/{id}", h.RequestDonation)

			r.With(requireAdmin).Post("/create-donation", h.CreateDonation)
			r.With(requireAdmin).Put("/update-donation/{id}", h.UpdateDonation)
			r.With(requireAdmin).Delete("/delete-donation/{id}", h.DeleteDonation)

			r.With(requireStaff).Post("/accept-donation/{id}", h.AcceptDonation)
			r.With(requireStaff).Post("/reject-donation/{id}", h.RejectDonation)
		})
	})

	// Раздача сохранённых изображений по ссылкам-путям из ответов API.
	uploadsDir := http.Dir(h.uploads.Dir())
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(uploadsDir)))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeMessage(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.writeMessage(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})

	return r
}
