package mongo

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/benesafe/registry/internal/core/domain"
	"github.com/benesafe/registry/internal/core/ports"
)

// profileListFilter builds the admin list query. A non-nil empty UserIDs
// slice becomes {$in: []} and matches nothing.
func profileListFilter(f ports.ListProfilesFilter) bson.M {
	filter := bson.M{}
	if f.UserIDs != nil {
		ids := make([]string, len(f.UserIDs))
		copy(ids, f.UserIDs)
		filter["_id"] = bson.M{"$in": ids}
	}
	if f.RoleID != "" {
		filter["role_id"] = f.RoleID
	}
	if f.BouquetID != "" {
		filter["bouquet_id"] = f.BouquetID
	}
	if f.Status != "" {
		filter["verification_status"] = string(f.Status)
	}
	return filter
}

// missingDefaultsFilter matches profiles whose role or bouquet is null or
// absent; an equality match on nil covers both in MongoDB.
func missingDefaultsFilter() bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"role_id": nil},
		bson.M{"bouquet_id": nil},
	}}
}

// referenceFilter counts profiles pointing at a role or bouquet.
func referenceFilter(field, id string) bson.M {
	return bson.M{field: id}
}

// recordCountFilter counts live records toward a quota. Soft-deleted
// records never count.
func recordCountFilter(ownerID string, kind domain.RecordKind, category domain.AssetCategory) bson.M {
	filter := bson.M{"owner_id": ownerID, "kind": string(kind), "deleted": false}
	if category != "" {
		filter["category"] = string(category)
	}
	return filter
}

func userSearchFilter(query string) bson.M {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	return bson.M{"$or": bson.A{
		bson.M{"username": pattern},
		bson.M{"email": pattern},
		bson.M{"first_name": pattern},
		bson.M{"last_name": pattern},
	}}
}

// usersWithoutProfilePipeline joins users to profiles on the user ID and
// keeps the users with no match.
func usersWithoutProfilePipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionProfiles,
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "profile",
		}}},
		{{Key: "$match", Value: bson.M{"profile": bson.M{"$size": 0}}}},
		{{Key: "$project", Value: bson.M{"_id": 1}}},
	}
}
