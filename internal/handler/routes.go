package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"pixel_ranking/internal/svc"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{Method: http.MethodPost, Path: "/placements", Handler: RecordPlacementHandler(serverCtx)},
			{Method: http.MethodPost, Path: "/stats/online", Handler: RecordOnlineCountHandler(serverCtx)},
		},
	)
	server.AddRoutes(
		[]rest.Route{
			{Method: http.MethodGet, Path: "/ranks", Handler: GetRanksHandler(serverCtx)},
			{Method: http.MethodGet, Path: "/ranks/user", Handler: GetUserRanksHandler(serverCtx)},
			{Method: http.MethodGet, Path: "/ranks/countries", Handler: GetCountryRanksHandler(serverCtx)},
			{Method: http.MethodGet, Path: "/ranks/countries/hourly", Handler: GetHourlyCountryStatsHandler(serverCtx)},
			{Method: http.MethodGet, Path: "/ranks/prevtop", Handler: GetPrevTopHandler(serverCtx)},
			{Method: http.MethodGet, Path: "/stats/online", Handler: GetOnlineUserStatsHandler(serverCtx)},
			{Method: http.MethodGet, Path: "/stats/pixels/hourly", Handler: GetHourlyPixelStatsHandler(serverCtx)},
			{Method: http.MethodGet, Path: "/stats/pixels/daily", Handler: GetDailyPixelStatsHandler(serverCtx)},
			{Method: http.MethodGet, Path: "/history/users", Handler: GetTopDailyHistoryHandler(serverCtx)},
			{Method: http.MethodGet, Path: "/history/countries", Handler: GetCountryDailyHistoryHandler(serverCtx)},
		},
	)
	server.AddRoute(rest.Route{
		Method:  http.MethodGet,
		Path:    "/metrics",
		Handler: serverCtx.Metrics.Handler().ServeHTTP,
	})
}
