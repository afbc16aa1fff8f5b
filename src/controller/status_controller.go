package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"gitlab.com/open-soft/go-signal-bot/src/repository"
	"gitlab.com/open-soft/go-signal-bot/src/service/exchange"
)

type StatusController struct {
	SnapshotRepository *repository.SnapshotRepository
	TradeRepository    *repository.TradeRepository
	Ledger             *exchange.PositionLedger
}

func (s *StatusController) GetStatusAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	snapshot := s.SnapshotRepository.Get()

	if snapshot == nil {
		http.Error(w, "Snapshot is not ready", http.StatusServiceUnavailable)

		return
	}

	encoded, _ := json.Marshal(snapshot)
	_, _ = fmt.Fprintf(w, string(encoded))
}

func (s *StatusController) GetPositionListAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	encoded, _ := json.Marshal(s.Ledger.OpenPositions())
	_, _ = fmt.Fprintf(w, string(encoded))
}

func (s *StatusController) GetScoreListAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	symbol := req.URL.Query().Get("symbol")
	if symbol == "" {
		http.Error(w, "Symbol is required", http.StatusBadRequest)

		return
	}

	encoded, _ := json.Marshal(s.SnapshotRepository.GetRecentScores(symbol))
	_, _ = fmt.Fprintf(w, string(encoded))
}

func (s *StatusController) GetTradeListAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	encoded, _ := json.Marshal(s.TradeRepository.GetRecentClosures(100))
	_, _ = fmt.Fprintf(w, string(encoded))
}
