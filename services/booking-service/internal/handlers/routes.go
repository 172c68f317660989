package handlers

import "net/http"

const publicPrefix = "/api/v1/public"

// Register mounts the public booking API on mux.
func Register(mux *http.ServeMux, c *CatalogHandler, b *BookingHandler, wz *WizardHandler) {
	mux.HandleFunc(publicPrefix+"/catalog", c.Get)
	mux.HandleFunc(publicPrefix+"/slots", b.Slots)
	mux.HandleFunc(publicPrefix+"/book", b.Create)
	mux.HandleFunc(publicPrefix+"/wizard", wz.Create)
	mux.HandleFunc(publicPrefix+"/wizard/{id}", wz.Get)
	mux.HandleFunc(publicPrefix+"/wizard/{id}/{action}", wz.Action)
}
