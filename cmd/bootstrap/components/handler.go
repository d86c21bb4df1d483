package components

import (
	"treatment-booking/internal/handler"
	"treatment-booking/internal/handler/api"
	"treatment-booking/internal/handler/middleware"
	"treatment-booking/internal/pkg/jwt"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewBookingHandler,
		func(s *jwt.Service) middleware.TokenValidator { return s },
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
