package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// KonepsFetcher pulls service-bid announcements from the KONEPS (나라장터)
// public bid-list API.
type KonepsFetcher struct {
	Client *http.Client
	Config KonepsConfig
}

func NewKonepsFetcher(cfg KonepsConfig) *KonepsFetcher {
	return &KonepsFetcher{
		Client: &http.Client{Timeout: 60 * time.Second},
		Config: cfg,
	}
}

// konepsResponse matches the bid-list API envelope.
type konepsResponse struct {
	Response struct {
		Header struct {
			ResultCode string `json:"resultCode"`
			ResultMsg  string `json:"resultMsg"`
		} `json:"header"`
		Body struct {
			Items      []konepsRecord `json:"items"`
			TotalCount int            `json:"totalCount"`
			PageNo     int            `json:"pageNo"`
			NumOfRows  int            `json:"numOfRows"`
		} `json:"body"`
	} `json:"response"`
}

// konepsRecord is a single announcement row. Only the fields the pipeline
// consumes are modeled.
type konepsRecord struct {
	BidNtceNo   string `json:"bidNtceNo"`
	BidNtceOrd  string `json:"bidNtceOrd"`
	BidNtceNm   string `json:"bidNtceNm"`
	NtceInsttNm string `json:"ntceInsttNm"`
	DminsttNm   string `json:"dminsttNm"`
	PresmptPrce string `json:"presmptPrce"`
	BidClseDt   string `json:"bidClseDt"`
	BidNtceDt   string `json:"bidNtceDt"`
	BidNtceURL  string `json:"bidNtceUrl"`
}

// FetchPage fetches one page of announcements posted in the lookback window
// ending at now. It returns the rows and the reported total count.
func (f *KonepsFetcher) FetchPage(ctx context.Context, pageNo int, now time.Time) ([]RawBid, int, error) {
	begin := now.AddDate(0, 0, -f.Config.LookbackDays)

	q := url.Values{}
	q.Set("serviceKey", f.Config.ServiceKey)
	q.Set("type", "json")
	q.Set("pageNo", fmt.Sprintf("%d", pageNo))
	q.Set("numOfRows", fmt.Sprintf("%d", f.Config.PageSize))
	q.Set("inqryDiv", "1")
	q.Set("inqryBgnDt", begin.Format("200601021504"))
	q.Set("inqryEndDt", now.Format("200601021504"))

	endpoint := f.Config.BaseURL + "/getBidPblancListInfoServcPPSSrch?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	log.Printf("[KONEPS] Fetching page %d (rows=%d, window=%s..%s)",
		pageNo, f.Config.PageSize, begin.Format("2006-01-02"), now.Format("2006-01-02"))

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, 0, fmt.Errorf("API returned %d: %s", resp.StatusCode, string(body))
	}

	var apiResp konepsResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, 0, fmt.Errorf("decoding response: %w", err)
	}
	if code := apiResp.Response.Header.ResultCode; code != "00" {
		return nil, 0, fmt.Errorf("API error %s: %s", code, apiResp.Response.Header.ResultMsg)
	}

	bids := make([]RawBid, 0, len(apiResp.Response.Body.Items))
	for _, rec := range apiResp.Response.Body.Items {
		bids = append(bids, rawBidFromKoneps(rec))
	}
	return bids, apiResp.Response.Body.TotalCount, nil
}

// FetchAll pages through the API until the reported total is exhausted or
// the configured page cap is hit.
func (f *KonepsFetcher) FetchAll(ctx context.Context, now time.Time) ([]RawBid, error) {
	var all []RawBid
	for page := 1; page <= f.Config.MaxPages; page++ {
		bids, total, err := f.FetchPage(ctx, page, now)
		if err != nil {
			return all, fmt.Errorf("page %d: %w", page, err)
		}
		all = append(all, bids...)
		if len(all) >= total || len(bids) == 0 {
			break
		}
	}
	log.Printf("[KONEPS] Collected %d announcements", len(all))
	return all, nil
}

func rawBidFromKoneps(rec konepsRecord) RawBid {
	agency := rec.NtceInsttNm
	if agency == "" {
		agency = rec.DminsttNm
	}
	link := rec.BidNtceURL
	if link == "" {
		link = G2BAnnouncementURL(rec.BidNtceNo, rec.BidNtceOrd)
	}
	return RawBid{
		Title:     rec.BidNtceNm,
		Agency:    agency,
		BudgetRaw: rec.PresmptPrce,
		Deadline:  rec.BidClseDt,
		BidNo:     rec.BidNtceNo,
		BidSeq:    rec.BidNtceOrd,
		URL:       link,
		Source:    "koneps",
	}
}

// G2BAnnouncementURL builds the public announcement page link from a bid
// number and its ordinal.
func G2BAnnouncementURL(bidNo, bidOrd string) string {
	if bidNo == "" {
		return ""
	}
	if bidOrd == "" {
		bidOrd = "01"
	}
	return fmt.Sprintf("https://www.g2b.go.kr/link/PNPE027_01/single/?bidPbancNo=%s&bidPbancOrd=%s", bidNo, bidOrd)
}
