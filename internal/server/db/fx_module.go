package db

import (
	"go.uber.org/fx"

	"github.com/glosshub/glosshub/internal/server/biz"
)

var Module = fx.Module("db",
	fx.Provide(NewMemoryStore),
	fx.Provide(func(s *MemoryStore) biz.AnnotationStore { return s }),
	fx.Provide(func(s *MemoryStore) biz.UserStore { return s }),
	fx.Provide(func(s *MemoryStore) biz.AuthClientStore { return s }),
	fx.Provide(func(s *MemoryStore) biz.ModerationStore { return s }),
	fx.Provide(func(s *MemoryStore) biz.FlagStore { return s }),
)
