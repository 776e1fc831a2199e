package dmarket

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Alias1177/skinflip/models"
)

var _ models.MarketplaceClient = (*Client)(nil)

type marketItemsResponse struct {
	Objects []marketObject `json:"objects"`
	Cursor  string         `json:"cursor"`
}

type marketObject struct {
	ItemID string            `json:"itemId"`
	Title  string            `json:"title"`
	Price  map[string]string `json:"price"`
	Extra  struct {
		OfferID           string   `json:"offerId"`
		FloatValue        *float64 `json:"floatValue"`
		PaintSeed         *int     `json:"paintSeed"`
		TradeLockDuration int64    `json:"tradeLockDuration"`
		Category          string   `json:"category"`
		Stickers          []struct {
			Name string `json:"name"`
		} `json:"stickers"`
	} `json:"extra"`
}

type targetsResponse struct {
	Orders []struct {
		TargetID string `json:"targetId"`
		Title    string `json:"title"`
		Price    string `json:"price"`
		Amount   string `json:"amount"`
	} `json:"orders"`
	Cursor string `json:"cursor"`
}

type feesResponse struct {
	DefaultFee struct {
		Fraction  string `json:"fraction"`
		MinAmount string `json:"minAmount"`
	} `json:"defaultFee"`
}

type balanceResponse struct {
	USD                    string `json:"usd"`
	USDAvailableToWithdraw string `json:"usdAvailableToWithdraw"`
	DMC                    string `json:"dmc"`
}

type money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type buyOffersRequest struct {
	Offers []buyOffer `json:"offers"`
}

type buyOffer struct {
	OfferID string `json:"offerId"`
	Price   money  `json:"price"`
	Type    string `json:"type"`
}

type buyOffersResponse struct {
	OrderID        string `json:"orderId"`
	Status         string `json:"status"`
	TxID           string `json:"txId"`
	DMOffersStatus map[string]struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	} `json:"dmOffersStatus"`
}

type createOffersRequest struct {
	Offers []createOffer `json:"Offers"`
}

type createOffer struct {
	AssetID string `json:"AssetID"`
	Price   struct {
		Amount   float64 `json:"Amount"`
		Currency string  `json:"Currency"`
	} `json:"Price"`
}

type inventoryResponse struct {
	Items []struct {
		AssetID  string `json:"AssetID"`
		Title    string `json:"Title"`
		Tradable bool   `json:"Tradable"`
	} `json:"Items"`
	Cursor string `json:"Cursor"`
}

type createOffersResponse struct {
	Result []struct {
		OfferID    string `json:"OfferID"`
		Successful bool   `json:"Successful"`
		Error      *struct {
			Code    string `json:"Code"`
			Message string `json:"Message"`
		} `json:"Error"`
	} `json:"Result"`
}

type deleteOffersRequest struct {
	Force   bool           `json:"force"`
	Objects []deleteObject `json:"objects"`
}

type deleteObject struct {
	OfferID string `json:"offerId"`
}

type deleteOffersResponse struct {
	Success []struct {
		OfferID string `json:"offerId"`
	} `json:"success"`
	Fail []struct {
		OfferID string `json:"offerId"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	} `json:"fail"`
}

// GetSellOffers returns the cheapest listings of a title, price ascending.
// DMarket buys by offer id, so each listing reports its offer id as the
// asset reference.
func (c *Client) GetSellOffers(ctx context.Context, title string, limit int, currency string) (models.OffersPage, error) {
	q := url.Values{}
	q.Set("gameId", c.gameID)
	q.Set("title", title)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("currency", currency)
	q.Set("orderBy", "price")
	q.Set("orderDir", "asc")

	var resp marketItemsResponse
	if err := c.do(ctx, http.MethodGet, "/exchange/v1/market/items?"+q.Encode(), nil, &resp); err != nil {
		return models.OffersPage{}, fmt.Errorf("fetching sell offers for %q: %w", title, err)
	}

	page := models.OffersPage{Cursor: resp.Cursor}
	for _, obj := range resp.Objects {
		cents, err := parseCents(obj.Price[currency])
		if err != nil {
			c.logger.Warn().Err(err).Str("item_id", obj.ItemID).Msg("Skipping offer with bad price")
			continue
		}
		ref := obj.Extra.OfferID
		if ref == "" {
			ref = obj.ItemID
		}
		offer := models.SellOffer{
			OfferID:    ref,
			AssetID:    ref,
			Title:      obj.Title,
			PriceCents: cents,
			Attributes: models.ItemAttributes{
				FloatValue: obj.Extra.FloatValue,
				PaintSeed:  obj.Extra.PaintSeed,
				StatTrak:   strings.Contains(obj.Title, "StatTrak"),
				Souvenir:   strings.HasPrefix(obj.Title, "Souvenir"),
			},
			TradeLockDays: lockDays(obj.Extra.TradeLockDuration),
		}
		for i, s := range obj.Extra.Stickers {
			offer.Stickers = append(offer.Stickers, models.Sticker{Name: s.Name, Slot: i})
		}
		page.Offers = append(page.Offers, offer)
	}
	return page, nil
}

// lockDays rounds a lock duration in seconds up to whole days.
func lockDays(seconds int64) int {
	if seconds <= 0 {
		return 0
	}
	const day = 24 * 60 * 60
	return int((seconds + day - 1) / day)
}

// GetBuyOrders returns the open buy orders (targets) for a title.
func (c *Client) GetBuyOrders(ctx context.Context, title, gameID string, limit int, orderBy, orderDir, currency string) (models.BuyOrdersPage, error) {
	if gameID == "" {
		gameID = c.gameID
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("orderBy", orderBy)
	q.Set("orderDir", orderDir)
	q.Set("currency", currency)
	path := fmt.Sprintf("/marketplace-api/v1/targets-by-title/%s/%s?%s", gameID, url.PathEscape(title), q.Encode())

	var resp targetsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return models.BuyOrdersPage{}, fmt.Errorf("fetching buy orders for %q: %w", title, err)
	}

	page := models.BuyOrdersPage{Cursor: resp.Cursor}
	for _, o := range resp.Orders {
		cents, err := parseCents(o.Price)
		if err != nil {
			c.logger.Warn().Err(err).Str("target_id", o.TargetID).Msg("Skipping buy order with bad price")
			continue
		}
		amount, _ := strconv.Atoi(o.Amount)
		orderTitle := o.Title
		if orderTitle == "" {
			orderTitle = title
		}
		page.Orders = append(page.Orders, models.BuyOrder{
			OfferID:    o.TargetID,
			Title:      orderTitle,
			PriceCents: cents,
			Amount:     amount,
		})
	}
	return page, nil
}

// GetFeeSchedule returns the default commission for a game.
func (c *Client) GetFeeSchedule(ctx context.Context, gameID string) (models.FeeSchedule, error) {
	q := url.Values{}
	q.Set("gameId", gameID)
	q.Set("offset", "0")
	q.Set("limit", "1")

	var resp feesResponse
	if err := c.do(ctx, http.MethodGet, "/exchange/v1/customized-fees?"+q.Encode(), nil, &resp); err != nil {
		return models.FeeSchedule{}, fmt.Errorf("fetching fee schedule: %w", err)
	}

	rate, err := decimal.NewFromString(resp.DefaultFee.Fraction)
	if err != nil {
		return models.FeeSchedule{}, fmt.Errorf("parsing fee fraction %q: %w", resp.DefaultFee.Fraction, err)
	}
	minCents, err := parseCents(resp.DefaultFee.MinAmount)
	if err != nil {
		return models.FeeSchedule{}, fmt.Errorf("parsing minimum fee: %w", err)
	}
	return models.FeeSchedule{
		Rate:             rate.InexactFloat64(),
		MinCommissionUSD: models.CentsToUSD(minCents),
	}, nil
}

// GetBalance returns the account balances in cents keyed by currency.
func (c *Client) GetBalance(ctx context.Context) (map[string]int64, error) {
	var resp balanceResponse
	if err := c.do(ctx, http.MethodGet, "/account/v1/balance", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching balance: %w", err)
	}

	out := make(map[string]int64, 2)
	if resp.USD != "" {
		usd, err := parseCents(resp.USD)
		if err != nil {
			return nil, fmt.Errorf("parsing USD balance: %w", err)
		}
		out["USD"] = usd
	}
	if resp.DMC != "" {
		if dmc, err := parseCents(resp.DMC); err == nil {
			out["DMC"] = dmc
		}
	}
	return out, nil
}

// GetInventory lists the account's items of one title. A bought offer
// shows up here under a new asset id, which is the one to sell.
func (c *Client) GetInventory(ctx context.Context, title string) ([]models.InventoryAsset, error) {
	q := url.Values{}
	q.Set("GameID", c.gameID)
	q.Set("BasicFilters.Title", title)
	q.Set("Limit", "100")

	var resp inventoryResponse
	if err := c.do(ctx, http.MethodGet, "/marketplace-api/v1/user-inventory?"+q.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching inventory for %q: %w", title, err)
	}

	assets := make([]models.InventoryAsset, 0, len(resp.Items))
	for _, it := range resp.Items {
		if it.Title != "" && it.Title != title {
			continue
		}
		assets = append(assets, models.InventoryAsset{AssetID: it.AssetID, Title: title, Tradable: it.Tradable})
	}
	return assets, nil
}

// SubmitBuy buys a listing by its offer id at the given price.
func (c *Client) SubmitBuy(ctx context.Context, assetID string, priceCents int64) (models.TradeResult, error) {
	payload := buyOffersRequest{Offers: []buyOffer{{
		OfferID: assetID,
		Price:   money{Amount: decimal.New(priceCents, -2).StringFixed(2), Currency: "USD"},
		Type:    "dmarket",
	}}}

	var resp buyOffersResponse
	if err := c.do(ctx, http.MethodPatch, "/exchange/v1/offers-buy", payload, &resp); err != nil {
		return models.TradeResult{}, fmt.Errorf("buying offer %s: %w", assetID, err)
	}

	result := models.TradeResult{
		Success:    true,
		OfferID:    assetID,
		TxID:       resp.TxID,
		PriceCents: priceCents,
		Message:    resp.Status,
	}
	if resp.TxID == "" {
		result.TxID = resp.OrderID
	}
	if st, ok := resp.DMOffersStatus[assetID]; ok && (st.Error != "" || strings.EqualFold(st.Status, "TxFailed")) {
		result.Success = false
		result.Message = st.Error
		if result.Message == "" {
			result.Message = st.Status
		}
	}
	if strings.EqualFold(resp.Status, "TxFailed") {
		result.Success = false
	}
	return result, nil
}

// SubmitSell lists an inventory asset for sale.
func (c *Client) SubmitSell(ctx context.Context, assetID string, priceCents int64) (models.TradeResult, error) {
	offer := createOffer{AssetID: assetID}
	offer.Price.Amount = models.CentsToUSD(priceCents)
	offer.Price.Currency = "USD"

	var resp createOffersResponse
	if err := c.do(ctx, http.MethodPost, "/marketplace-api/v1/user-offers/create", createOffersRequest{Offers: []createOffer{offer}}, &resp); err != nil {
		return models.TradeResult{}, fmt.Errorf("listing asset %s: %w", assetID, err)
	}
	if len(resp.Result) == 0 {
		return models.TradeResult{Message: "empty response"}, nil
	}

	r := resp.Result[0]
	result := models.TradeResult{
		Success:    r.Successful,
		OfferID:    r.OfferID,
		TxID:       r.OfferID,
		PriceCents: priceCents,
	}
	if r.Error != nil {
		result.Success = false
		result.Message = r.Error.Message
	}
	return result, nil
}

// CancelOffer removes one of the account's listings.
func (c *Client) CancelOffer(ctx context.Context, offerID string) (models.TradeResult, error) {
	payload := deleteOffersRequest{Force: true, Objects: []deleteObject{{OfferID: offerID}}}

	var resp deleteOffersResponse
	if err := c.do(ctx, http.MethodDelete, "/exchange/v1/offers", payload, &resp); err != nil {
		return models.TradeResult{}, fmt.Errorf("cancelling offer %s: %w", offerID, err)
	}
	for _, f := range resp.Fail {
		if f.OfferID == offerID {
			return models.TradeResult{OfferID: offerID, Message: f.Error.Message}, nil
		}
	}
	return models.TradeResult{Success: true, OfferID: offerID}, nil
}

// parseCents reads an integer amount of cents sent as a string.
func parseCents(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d.Round(0).IntPart(), nil
}
