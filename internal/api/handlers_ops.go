package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/emberforge-labs/asset-ledger/internal/types"
)

func actorFrom(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(actorHeader))
}

func decodeRequest(r *http.Request, dst any) *types.Error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return types.NewValidationFailedError(fmt.Errorf("malformed request body: %w", err))
	}
	return nil
}

type mintRequest struct {
	To       string `json:"to"`
	AssetID  uint64 `json:"asset_id"`
	Quantity uint64 `json:"quantity"`
}

func (s *Server) handleMint(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	rec, err := s.service.Mint(r.Context(), actorFrom(r), req.To, req.AssetID, req.Quantity)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, rec)
}

func (s *Server) handleEmergencyMint(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	rec, err := s.service.EmergencyMint(r.Context(), actorFrom(r), req.To, req.AssetID, req.Quantity)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, rec)
}

type burnRequest struct {
	From     string `json:"from"`
	AssetID  uint64 `json:"asset_id"`
	Quantity uint64 `json:"quantity"`
}

func (s *Server) handleBurn(w http.ResponseWriter, r *http.Request) {
	var req burnRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	rec, err := s.service.Burn(r.Context(), actorFrom(r), req.From, req.AssetID, req.Quantity)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, rec)
}

type transferRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	AssetID  uint64 `json:"asset_id"`
	Quantity uint64 `json:"quantity"`
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	rec, err := s.service.Transfer(r.Context(), actorFrom(r), req.From, req.To, req.AssetID, req.Quantity)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, rec)
}

type batchTransferRequest struct {
	From       string   `json:"from"`
	To         string   `json:"to"`
	AssetIDs   []uint64 `json:"asset_ids"`
	Quantities []uint64 `json:"quantities"`
}

func (s *Server) handleBatchTransfer(w http.ResponseWriter, r *http.Request) {
	var req batchTransferRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	rec, err := s.service.BatchTransfer(r.Context(), actorFrom(r), req.From, req.To, req.AssetIDs, req.Quantities)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, rec)
}

type approveOperatorRequest struct {
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

// handleApproveOperator sets or clears an operator approval. The owner is the
// acting account itself, so no role check applies.
func (s *Server) handleApproveOperator(w http.ResponseWriter, r *http.Request) {
	var req approveOperatorRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	rec, err := s.service.ApproveOperator(r.Context(), actorFrom(r), req.Operator, req.Approved)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, rec)
}

type shopPurchaseRequest struct {
	AssetID  uint64 `json:"asset_id"`
	Quantity uint64 `json:"quantity"`
}

func (s *Server) handleShopPurchase(w http.ResponseWriter, r *http.Request) {
	var req shopPurchaseRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	rec, err := s.service.ShopPurchase(r.Context(), actorFrom(r), req.AssetID, req.Quantity)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, rec)
}

type stakeRequest struct {
	AssetID  uint64 `json:"asset_id"`
	Quantity uint64 `json:"quantity"`
}

func (s *Server) handleStake(w http.ResponseWriter, r *http.Request) {
	var req stakeRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	rec, err := s.service.Stake(r.Context(), actorFrom(r), req.AssetID, req.Quantity)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, rec)
}

func (s *Server) handleUnstake(w http.ResponseWriter, r *http.Request) {
	var req stakeRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	rec, err := s.service.Unstake(r.Context(), actorFrom(r), req.AssetID, req.Quantity)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, rec)
}

type createListingRequest struct {
	AssetID   uint64 `json:"asset_id"`
	Quantity  uint64 `json:"quantity"`
	UnitPrice uint64 `json:"unit_price"`
}

func (s *Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	rec, err := s.service.List(r.Context(), actorFrom(r), req.AssetID, req.Quantity, req.UnitPrice)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, rec)
}

type purchaseListingRequest struct {
	ListingID uint64 `json:"listing_id"`
	Quantity  uint64 `json:"quantity"`
}

func (s *Server) handlePurchaseListing(w http.ResponseWriter, r *http.Request) {
	var req purchaseListingRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	rec, err := s.service.PurchaseListing(r.Context(), actorFrom(r), req.ListingID, req.Quantity)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, rec)
}

type cancelListingRequest struct {
	ListingID uint64 `json:"listing_id"`
	Force     bool   `json:"force"`
}

func (s *Server) handleCancelListing(w http.ResponseWriter, r *http.Request) {
	var req cancelListingRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	rec, err := s.service.CancelListing(r.Context(), actorFrom(r), req.ListingID, req.Force)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, rec)
}

// handleStartSeason takes no body, the actor header is all it needs.
func (s *Server) handleStartSeason(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.StartNewSeason(r.Context(), actorFrom(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, rec)
}

type setPriceRequest struct {
	AssetID uint64 `json:"asset_id"`
	Price   uint64 `json:"price"`
}

func (s *Server) handleSetPrice(w http.ResponseWriter, r *http.Request) {
	var req setPriceRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	rec, err := s.service.SetPrice(r.Context(), actorFrom(r), req.AssetID, req.Price)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, rec)
}

type setDailyLimitRequest struct {
	AssetID uint64 `json:"asset_id"`
	Limit   uint64 `json:"limit"`
}

func (s *Server) handleSetDailyLimit(w http.ResponseWriter, r *http.Request) {
	var req setDailyLimitRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	rec, err := s.service.SetDailyLimit(r.Context(), actorFrom(r), req.AssetID, req.Limit)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, rec)
}

type setTradingRequest struct {
	AssetID uint64 `json:"asset_id"`
	Enabled bool   `json:"enabled"`
}

func (s *Server) handleSetTrading(w http.ResponseWriter, r *http.Request) {
	var req setTradingRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	rec, err := s.service.SetTradingEnabled(r.Context(), actorFrom(r), req.AssetID, req.Enabled)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, rec)
}
