package fx

import (
	"github.com/curatorbot/autopost-engine/internal/repositories/channel"
	"github.com/curatorbot/autopost-engine/internal/repositories/persona"
	"github.com/curatorbot/autopost-engine/internal/repositories/published"
	"github.com/curatorbot/autopost-engine/internal/repositories/queueitem"
	"github.com/curatorbot/autopost-engine/internal/repositories/sourcepost"
	"go.uber.org/fx"
)

var Module = fx.Options(
	sourcepost.Module,
	channel.Module,
	queueitem.Module,
	published.Module,
	persona.Module,
)
