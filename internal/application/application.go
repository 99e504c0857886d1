package application

import (
	"github.com/dvdk01/loadsim/internal/config"
	"github.com/dvdk01/loadsim/internal/schema"
)

type Application interface {
	PrintConfig(cfg config.Config, endpoints int)
	Progress(done, total int)
	Render(report schema.Report)
}
