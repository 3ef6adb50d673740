package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ItemKeyPrefix = "item:%d"
	ItemsListKey  = "items:active:first-page"
	UserKeyPrefix = "user:%d"
)

const (
	ItemTTL = 10 * time.Minute
	ListTTL = 30 * time.Second
	UserTTL = 5 * time.Minute
)

func ItemKey(itemID uint) string {
	return fmt.Sprintf(ItemKeyPrefix, itemID)
}

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateItem(ctx context.Context, itemID uint) {
	Invalidate(ctx, ItemKey(itemID))
}

func InvalidateItemsList(ctx context.Context) {
	Invalidate(ctx, ItemsListKey)
}
