package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/rentivu/internal/interface/http"
)

type RentalModule struct {
	Handler *handlers.RentalHandler
}

func NewRentalModule(h *handlers.RentalHandler) *RentalModule {
	return &RentalModule{Handler: h}
}

func (m *RentalModule) Register(rg *gin.RouterGroup) {
	rg.GET("/locations", m.Handler.Locations)
	rg.GET("/rentals", m.Handler.List)
	rg.GET("/rentals/:id", m.Handler.Get)
	rg.GET("/rentals/:id/reservations", m.Handler.Reservations)
	rg.POST("/rentals/:id/reservations", m.Handler.Book)
}
