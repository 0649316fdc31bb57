package ratesource

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gorilla/mux"
)

// mockUpstream simulates the remote rate APIs behind a single test server.
// Handlers can be told to fail to exercise fallback paths.
type mockUpstream struct {
	server *httptest.Server

	usdRate    float64
	rateDate   string
	boiDown    bool
	erhDown    bool
	erapiDown  bool
	omitUSD    bool
	historyLen int
}

func newMockUpstream() *mockUpstream {
	u := &mockUpstream{
		usdRate:    3.09,
		rateDate:   "2026-02-15",
		historyLen: 30,
	}

	router := mux.NewRouter()
	router.HandleFunc("/PublicApi/GetExchangeRates", u.handleBOI).Methods(http.MethodGet)
	router.HandleFunc("/latest", u.handleERHLatest).Methods(http.MethodGet)
	router.HandleFunc("/timeseries", u.handleERHTimeseries).Methods(http.MethodGet)
	router.HandleFunc("/v6/latest/USD", u.handleERAPI).Methods(http.MethodGet)

	u.server = httptest.NewServer(router)

	return u
}

func (u *mockUpstream) Close() {
	u.server.Close()
}

func (u *mockUpstream) URL() string {
	return u.server.URL
}

func (u *mockUpstream) handleBOI(w http.ResponseWriter, _ *http.Request) {
	if u.boiDown {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/xml")

	currency := ""
	if !u.omitUSD {
		currency = fmt.Sprintf(`<CURRENCY><NAME>Dollar</NAME><CURRENCYCODE>USD</CURRENCYCODE><RATE>%.4f</RATE><LAST_UPDATE>%s</LAST_UPDATE></CURRENCY>`,
			u.usdRate, u.rateDate)
	}

	fmt.Fprintf(w, `<CURRENCIES><LAST_UPDATE>%s</LAST_UPDATE>%s<CURRENCY><NAME>Euro</NAME><CURRENCYCODE>EUR</CURRENCYCODE><RATE>3.3500</RATE></CURRENCY></CURRENCIES>`,
		u.rateDate, currency)
}

func (u *mockUpstream) handleERHLatest(w http.ResponseWriter, _ *http.Request) {
	if u.erhDown {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"date":    u.rateDate,
		"rates":   map[string]float64{"ILS": u.usdRate},
	})
}

func (u *mockUpstream) handleERHTimeseries(w http.ResponseWriter, _ *http.Request) {
	if u.erhDown {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	end, _ := time.Parse("2006-01-02", u.rateDate)
	rates := make(map[string]map[string]float64, u.historyLen)

	for i := 0; i < u.historyLen; i++ {
		date := end.AddDate(0, 0, -i).Format("2006-01-02")
		rates[date] = map[string]float64{"ILS": u.usdRate + 0.001*float64(i)}
	}

	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"rates":   rates,
	})
}

func (u *mockUpstream) handleERAPI(w http.ResponseWriter, _ *http.Request) {
	if u.erapiDown {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	updated, _ := time.Parse("2006-01-02", u.rateDate)

	json.NewEncoder(w).Encode(map[string]any{
		"rates":                map[string]float64{"ILS": u.usdRate, "EUR": 0.92},
		"time_last_update_utc": updated.Format(time.RFC1123Z),
	})
}
