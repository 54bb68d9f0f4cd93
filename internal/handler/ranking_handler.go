package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"

	"pixel_ranking/internal/logic"
	"pixel_ranking/internal/svc"
)

// maxPageSize 单次分页查询的最大条数
const maxPageSize = 100

type RecordPlacementReq struct {
	UserId      int64  `json:"userId"`
	CountryCode string `json:"countryCode"`
}

type RecordOnlineCountReq struct {
	Count int64 `json:"count"`
}

type SuccessResp struct {
	Success bool `json:"success"`
}

type GetUserRanksReq struct {
	UserId int64 `form:"userId"`
}

type GetRanksReq struct {
	Dimension string `form:"dimension,default=total,options=total|daily"`
	Start     int64  `form:"start,default=1"`
	Amount    int64  `form:"amount,default=100"`
}

type PageReq struct {
	Start  int64 `form:"start,default=1"`
	Amount int64 `form:"amount,default=100"`
}

type ErrorResp struct {
	Error string `json:"error"`
}

func RecordPlacementHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RecordPlacementReq
		if err := httpx.Parse(r, &req); err != nil {
			writeError(r.Context(), w, badRequest(err))
			return
		}
		ctx := r.Context()
		if err := svcCtx.RankingLogic.RecordPlacement(ctx, req.UserId, req.CountryCode); err != nil {
			writeError(ctx, w, err)
			return
		}
		httpx.OkJsonCtx(ctx, w, &SuccessResp{Success: true})
	}
}

func RecordOnlineCountHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RecordOnlineCountReq
		if err := httpx.Parse(r, &req); err != nil {
			writeError(r.Context(), w, badRequest(err))
			return
		}
		ctx := r.Context()
		if err := svcCtx.SamplerLogic.RecordOnlineUserCount(ctx, req.Count); err != nil {
			writeError(ctx, w, err)
			return
		}
		httpx.OkJsonCtx(ctx, w, &SuccessResp{Success: true})
	}
}

func GetUserRanksHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GetUserRanksReq
		if err := httpx.Parse(r, &req); err != nil {
			writeError(r.Context(), w, badRequest(err))
			return
		}
		ctx := r.Context()
		resp, err := svcCtx.RankingLogic.GetUserRanks(ctx, req.UserId)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		httpx.OkJsonCtx(ctx, w, resp)
	}
}

func GetRanksHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GetRanksReq
		if err := httpx.Parse(r, &req); err != nil {
			writeError(r.Context(), w, badRequest(err))
			return
		}
		ctx := r.Context()
		resp, err := svcCtx.HistoryLogic.GetRanks(ctx, logic.Dimension(req.Dimension), req.Start, clampAmount(req.Amount))
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		httpx.OkJsonCtx(ctx, w, resp)
	}
}

func GetCountryRanksHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PageReq
		if err := httpx.Parse(r, &req); err != nil {
			writeError(r.Context(), w, badRequest(err))
			return
		}
		ctx := r.Context()
		resp, err := svcCtx.HistoryLogic.GetCountryRanks(ctx, req.Start, clampAmount(req.Amount))
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		httpx.OkJsonCtx(ctx, w, resp)
	}
}

func GetHourlyCountryStatsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PageReq
		if err := httpx.Parse(r, &req); err != nil {
			writeError(r.Context(), w, badRequest(err))
			return
		}
		ctx := r.Context()
		resp, err := svcCtx.HistoryLogic.GetHourlyCountryStats(ctx, req.Start, clampAmount(req.Amount))
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		httpx.OkJsonCtx(ctx, w, resp)
	}
}

func GetPrevTopHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		resp, err := svcCtx.HistoryLogic.GetPrevTop(ctx)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		httpx.OkJsonCtx(ctx, w, resp)
	}
}

func GetOnlineUserStatsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return seriesHandler(svcCtx.HistoryLogic.GetOnlineUserStats)
}

func GetHourlyPixelStatsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return seriesHandler(svcCtx.HistoryLogic.GetHourlyPixelStats)
}

func GetDailyPixelStatsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return seriesHandler(svcCtx.HistoryLogic.GetDailyPixelStats)
}

func GetTopDailyHistoryHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		resp, err := svcCtx.HistoryLogic.GetTopDailyHistory(ctx)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		httpx.OkJsonCtx(ctx, w, resp)
	}
}

func GetCountryDailyHistoryHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		resp, err := svcCtx.HistoryLogic.GetCountryDailyHistory(ctx)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		httpx.OkJsonCtx(ctx, w, resp)
	}
}

func seriesHandler(get func(ctx context.Context) ([]int64, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		resp, err := get(ctx)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		httpx.OkJsonCtx(ctx, w, resp)
	}
}

func clampAmount(amount int64) int64 {
	if amount > maxPageSize {
		return maxPageSize
	}
	return amount
}

func badRequest(err error) error {
	return fmt.Errorf("%w: %v", logic.ErrInvalidArgument, err)
}

// writeError 参数错误返回 400，其余错误只记录日志并返回 500
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, logic.ErrInvalidArgument) {
		httpx.WriteJsonCtx(ctx, w, http.StatusBadRequest, &ErrorResp{Error: err.Error()})
		return
	}
	logx.WithContext(ctx).Errorw("request failed", logx.Field("error", err.Error()))
	httpx.WriteJsonCtx(ctx, w, http.StatusInternalServerError, &ErrorResp{Error: "internal error"})
}
