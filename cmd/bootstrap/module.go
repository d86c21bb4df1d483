package bootstrap

import (
	"treatment-booking/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	StoreModule,
	JWTModule,
	components.UseCaseModule,
	components.HandlerModule,
)
