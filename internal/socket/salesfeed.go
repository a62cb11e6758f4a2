package socket

import (
	"context"

	"github.com/medicare-pharmacy/medicare-backend/internal/types"
)

const SalesFeedChannel = "sales-feed"

// SalesFeed publishes recorded sales on SalesFeedChannel.
type SalesFeed struct {
	hub *Hub
}

func NewSalesFeed(hub *Hub) *SalesFeed {
	return &SalesFeed{hub: hub}
}

func (sf *SalesFeed) BroadcastSale(ctx context.Context, sale types.SaleView) error {
	return sf.hub.BroadcastGlobal(ctx, Message{Channel: SalesFeedChannel, Payload: sale})
}
