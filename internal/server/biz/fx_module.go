package biz

import (
	"go.uber.org/fx"
)

var Module = fx.Module("biz",
	fx.Provide(NewUserService),
	fx.Provide(NewAuthService),
	fx.Provide(NewPermissionService),
	fx.Provide(NewModerationService),
	fx.Provide(NewFlagService),
	fx.Provide(NewAnnotationService),
	fx.Provide(NewAnnotationJSONService),
)
