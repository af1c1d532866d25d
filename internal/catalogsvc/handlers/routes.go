package handlers

import (
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
)

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {

		r.Get("/ping", h.HealthHandler)

		r.Route("/games", func(r chi.Router) {
			r.Get("/", h.GetAllGames)
			r.Get("/genres", h.GetGenres)
			r.Get("/platforms", h.GetPlatforms)
			r.Get("/developers", h.GetDevelopers)
			r.Get("/publishers", h.GetPublishers)
			r.Get("/chart-data", h.GetChart)
			r.Post("/add", h.AddGame)
			r.Put("/update/{id}", h.UpdateGame)
			r.Delete("/delete/{id}", h.DeleteGame)
			r.Get("/{page}/{records}/{sortOption}", h.GetGamesPaginatedAndFiltered)
			r.Get("/{id}", h.GetGame)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/signup", h.SignUp)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Get("/{page}/{records}", h.GetUsersPaginated)
			r.Post("/add-account", h.AddAccount)
			r.Delete("/delete-account/{id}", h.DeleteAccount)

			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(h.tokenAuth))
				r.Use(jwtauth.Authenticator)

				r.Get("/", h.GetAuthenticatedUser)
			})
		})

		// list routes require an authenticated caller
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Route("/your-list", func(r chi.Router) {
				r.Get("/", h.GetListCount)
				r.Post("/add-game/{id}", h.AddGameToList)
				r.Put("/update-game/{id}", h.UpdateGameFromList)
				r.Delete("/delete-game/{id}", h.DeleteGameFromList)
				r.Get("/{page}/{records}", h.GetListPaginated)
				r.Get("/{id}/{page}/{records}", h.GetListForUserPaginated)
				r.Get("/{id}", h.GetEntriesByGame)
				r.Delete("/{userId}/delete-game/{gameId}", h.DeleteGameOfUser)
			})
		})
	})
}
