package main

import (
	"flag"
	"fmt"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest"

	"pixel_ranking/internal/config"
	"pixel_ranking/internal/handler"
	"pixel_ranking/internal/job"
	"pixel_ranking/internal/svc"
)

var configFile = flag.String("f", "etc/ranking.yaml", "the config file")

func main() {
	flag.Parse()

	var c config.Config
	conf.MustLoad(*configFile, &c)

	server := rest.MustNewServer(c.RestConf)
	defer server.Stop()

	ctx, err := svc.NewServiceContext(c)
	logx.Must(err)
	defer ctx.Close()

	handler.RegisterHandlers(server, ctx)

	if c.Schedule.Enabled {
		scheduler, err := job.NewScheduler(c, job.Jobs{
			Country: ctx.HourlyLogic,
			Pixels:  ctx.SamplerLogic,
			Daily:   ctx.RolloverLogic,
		}, ctx.Metrics)
		logx.Must(err)
		scheduler.Start()
		defer scheduler.Stop()
	} else {
		logx.Info("built-in scheduler disabled, periodic jobs must be triggered externally")
	}

	fmt.Printf("Starting server at %s:%d...\n", c.Host, c.Port)
	server.Start()
}
