package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	packetCtl "examportal_backend/internals/features/exams/packets/controller"
)

//   - /packets/...
func PacketAdminRoutes(r fiber.Router, db *gorm.DB, lookupPageSize int) {
	ctl := packetCtl.NewPacketController(db, lookupPageSize)

	grp := r.Group("/packets")
	grp.Get("/", ctl.ListPackets)
	grp.Post("/generate", ctl.GeneratePackets)
}
