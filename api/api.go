package api

import (
	"context"
	"log"
	"net/http"

	"github.com/zlnvch/stylussphere/api/rest"
	"github.com/zlnvch/stylussphere/api/ws"
	"github.com/zlnvch/stylussphere/cache"
	"github.com/zlnvch/stylussphere/service"
	"github.com/zlnvch/stylussphere/store"
)

type StylusSphereAPI struct {
	restHandler *rest.Handler
	wsHandler   *ws.Handler
	shutdownCtx context.Context
}

func NewStylusSphereAPI(
	stylusStore store.StylusStore,
	stylusCache cache.StylusCache,
	jwtSecret []byte,
	shutdownCtx context.Context,
) (*StylusSphereAPI, error) {
	wsHub := ws.NewHub(stylusCache)
	err := wsHub.InitSubscriptions(shutdownCtx)
	if err != nil {
		log.Printf("Failed to start WS Hub subscriptions service: %v", err)
		return &StylusSphereAPI{}, err
	}
	go wsHub.Run()

	svc, err := service.NewService(stylusStore, stylusCache, jwtSecret)
	if err != nil {
		log.Printf("Failed to create service: %v", err)
		return &StylusSphereAPI{}, err
	}

	restHandler := rest.NewHandler(svc)
	wsHandler := ws.NewHandler(svc, wsHub)

	return &StylusSphereAPI{
		restHandler: restHandler,
		wsHandler:   wsHandler,
		shutdownCtx: shutdownCtx,
	}, nil
}

func (stylusAPI *StylusSphereAPI) RegisterRoutes(mux *http.ServeMux, requiredOrigin string) {
	// Health check endpoint (no auth required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("/auth/signup", stylusAPI.restHandler.HandleSignup)
	mux.HandleFunc("/auth/login", stylusAPI.restHandler.HandleLogin)
	mux.HandleFunc("/auth/logout", stylusAPI.restHandler.HandleLogout)
	mux.HandleFunc("/snapshots", stylusAPI.restHandler.HandleSnapshots)
	mux.HandleFunc("/snapshots/", stylusAPI.restHandler.HandleSnapshotByID)

	wsUpgrader := stylusAPI.wsHandler.NewWsUpgrader(requiredOrigin)
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		stylusAPI.wsHandler.ServeWS(wsUpgrader, w, r, stylusAPI.shutdownCtx)
	})
}
