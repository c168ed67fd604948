package mongo

import (
	"testing"

	assetsrepo "sarpras/internal/assets/repository"
	driversrepo "sarpras/internal/drivers/repository"
	"sarpras/internal/reservations/lock"
	reservationsrepo "sarpras/internal/reservations/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestCollectionNamesMatchRepositories(t *testing.T) {
	want := map[string]bool{
		assetsrepo.CollectionName:       true,
		driversrepo.CollectionName:      true,
		reservationsrepo.CollectionName: true,
		lock.CollectionName:             true,
	}

	for _, def := range Collections() {
		if !want[def.Name] {
			t.Errorf("migration defines unknown collection %q", def.Name)
		}
		delete(want, def.Name)
		if def.Validator["$jsonSchema"] == nil {
			t.Errorf("%s has no $jsonSchema validator", def.Name)
		}
	}
	for name := range want {
		t.Errorf("collection %q is not migrated", name)
	}
}

func TestUniqueCodeIndexes(t *testing.T) {
	tests := []struct {
		name    string
		indexes []mongo.IndexModel
	}{
		{"assets", AssetsIndexes},
		{"drivers", DriversIndexes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := tt.indexes[0]
			if keys := idx.Keys.(bson.D); keys[0].Key != "code" {
				t.Fatalf("first index is on %q, want code", keys[0].Key)
			}
			if idx.Options == nil || idx.Options.Unique == nil || !*idx.Options.Unique {
				t.Error("code index must be unique")
			}
		})
	}
}

func TestLockTTLIndex(t *testing.T) {
	idx := ReservationLocksIndexes[0]
	if idx.Options == nil || idx.Options.ExpireAfterSeconds == nil || *idx.Options.ExpireAfterSeconds != 0 {
		t.Error("lock expiry index must expire documents at expires_at")
	}
}

func TestReservationOverlapIndexes(t *testing.T) {
	leading := map[string]bool{}
	for _, idx := range ReservationsIndexes {
		leading[idx.Keys.(bson.D)[0].Key] = true
	}
	for _, key := range []string{"asset_code", "vehicle.driver_ref", "room.items.item_code"} {
		if !leading[key] {
			t.Errorf("missing overlap index led by %s", key)
		}
	}
}
