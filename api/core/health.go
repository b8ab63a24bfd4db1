package core

import (
	"context"
	"time"

	"github.com/anoixa/photo-manager/cache"
	"github.com/anoixa/photo-manager/database"
	"github.com/anoixa/photo-manager/storage"
)

func checkDatabaseHealth(factory *database.Factory) string {
	if factory == nil {
		return "not initialized"
	}
	if err := factory.Ping(); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

func checkCacheHealth(provider cache.Provider) string {
	if provider == nil {
		return "disabled"
	}
	return "ok"
}

func checkStorageHealth(factory *storage.Factory) string {
	if factory == nil {
		return "not initialized"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := factory.GetDefault().Health(ctx); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}
