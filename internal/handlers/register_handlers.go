package handlers

import (
	"github.com/gin-gonic/gin"

	portsrepo "github.com/vaultis/bankledger/internal/core/ports/repositories"
	portssvc "github.com/vaultis/bankledger/internal/core/ports/services"
	"github.com/vaultis/bankledger/internal/middleware"
)

// RegisterRoutes sets up all application routes, injecting dependencies
// through the service interfaces.
func RegisterRoutes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
	idempotencyRepo portsrepo.IdempotencyRepository,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, services, idempotencyRepo)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to the
// entity-specific route registrations.
func setupAPIV1Routes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
	idempotencyRepo portsrepo.IdempotencyRepository,
) {
	// The idempotency cache wraps every mutating v1 route: a replayed request
	// gets its stored response back before any handler or service runs.
	v1 := r.Group("/api/v1", middleware.Idempotency(idempotencyRepo))

	registerAccountRoutes(v1, services.Account)
	registerTransferRoutes(v1, services.Transfer)
}
