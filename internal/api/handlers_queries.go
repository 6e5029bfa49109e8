package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/emberforge-labs/asset-ledger/internal/types"
)

// defaultRecordPageSize bounds journal reads when the caller gives no limit;
// maxRecordPageSize bounds them regardless of what the caller asks for.
const (
	defaultRecordPageSize uint64 = 100
	maxRecordPageSize     uint64 = 1000
)

func pageLimit(r *http.Request) (uint64, *types.Error) {
	limit, err := uint64Query(r, "limit", defaultRecordPageSize)
	if err != nil {
		return 0, err
	}
	if limit > maxRecordPageSize {
		limit = maxRecordPageSize
	}
	return limit, nil
}

func uint64Param(r *http.Request, name string) (uint64, *types.Error) {
	raw := chi.URLParam(r, name)
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, types.NewValidationFailedError(fmt.Errorf("invalid %s %q", name, raw))
	}
	return v, nil
}

func uint64Query(r *http.Request, name string, fallback uint64) (uint64, *types.Error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, types.NewValidationFailedError(fmt.Errorf("invalid %s %q", name, raw))
	}
	return v, nil
}

func (s *Server) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Ping(r.Context()); err != nil {
		writeError(r.Context(), w, types.NewInternalServiceError(
			fmt.Errorf("journal store unreachable: %w", err),
		))
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, s.service.Ledger().ListAssets())
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	assetID, err := uint64Param(r, "assetID")
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	asset, lerr := s.service.Ledger().GetAsset(assetID)
	if lerr != nil {
		writeError(r.Context(), w, lerr)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, asset)
}

type balanceResponse struct {
	Account string `json:"account"`
	AssetID uint64 `json:"asset_id"`
	Balance uint64 `json:"balance"`
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	assetID, err := uint64Param(r, "assetID")
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	balance, lerr := s.service.Ledger().BalanceOf(account, assetID)
	if lerr != nil {
		writeError(r.Context(), w, lerr)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, balanceResponse{
		Account: account,
		AssetID: assetID,
		Balance: balance,
	})
}

type batchBalancesResponse struct {
	Accounts []string `json:"accounts"`
	AssetIDs []uint64 `json:"asset_ids"`
	Balances []uint64 `json:"balances"`
}

// handleBatchBalances pairs repeated account and asset_id query params
// positionally, mirroring the ledger's batch query.
func (s *Server) handleBatchBalances(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	accounts := query["account"]
	rawIDs := query["asset_id"]

	assetIDs := make([]uint64, 0, len(rawIDs))
	for _, raw := range rawIDs {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(r.Context(), w, types.NewValidationFailedError(
				fmt.Errorf("invalid asset_id %q", raw),
			))
			return
		}
		assetIDs = append(assetIDs, v)
	}

	balances, lerr := s.service.Ledger().BatchBalanceOf(accounts, assetIDs)
	if lerr != nil {
		writeError(r.Context(), w, lerr)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, batchBalancesResponse{
		Accounts: accounts,
		AssetIDs: assetIDs,
		Balances: balances,
	})
}

func (s *Server) handleActiveListings(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, s.service.Ledger().ActiveListings())
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	listingID, err := uint64Param(r, "listingID")
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	listing, lerr := s.service.Ledger().GetListing(listingID)
	if lerr != nil {
		writeError(r.Context(), w, lerr)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, listing)
}

func (s *Server) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	stats, lerr := s.service.Ledger().GetPlayerStats(chi.URLParam(r, "account"))
	if lerr != nil {
		writeError(r.Context(), w, lerr)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, stats)
}

func (s *Server) handleStakingInfo(w http.ResponseWriter, r *http.Request) {
	assetID, err := uint64Param(r, "assetID")
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	info, lerr := s.service.Ledger().StakingInfo(chi.URLParam(r, "account"), assetID)
	if lerr != nil {
		writeError(r.Context(), w, lerr)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, info)
}

type operatorResponse struct {
	Owner    string `json:"owner"`
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

func (s *Server) handleIsOperator(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	operator := chi.URLParam(r, "operator")
	writeJSON(r.Context(), w, http.StatusOK, operatorResponse{
		Owner:    owner,
		Operator: operator,
		Approved: s.service.Ledger().IsOperator(owner, operator),
	})
}

func (s *Server) handleSeason(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, s.service.Ledger().CurrentSeasonInfo())
}

// handleLeaderboard serves the ranked season scores. Season zero (or absent)
// means the current season.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	season, err := uint64Query(r, "season", 0)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if season > uint64(^uint32(0)) {
		writeError(r.Context(), w, types.NewValidationFailedError(
			fmt.Errorf("season %d out of range", season),
		))
		return
	}
	limit, err := pageLimit(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	entries := s.service.Ledger().Leaderboard(uint32(season), int(limit))
	writeJSON(r.Context(), w, http.StatusOK, entries)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	fromSeq, err := uint64Query(r, "from", 0)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	limit, err := pageLimit(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	records, qerr := s.service.GetRecords(r.Context(), fromSeq, int64(limit))
	if qerr != nil {
		writeError(r.Context(), w, qerr)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, records)
}

func (s *Server) handleRecordsByActor(w http.ResponseWriter, r *http.Request) {
	fromSeq, err := uint64Query(r, "from", 0)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	limit, err := pageLimit(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	records, qerr := s.service.GetRecordsByActor(r.Context(), chi.URLParam(r, "actor"), fromSeq, int64(limit))
	if qerr != nil {
		writeError(r.Context(), w, qerr)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, records)
}
