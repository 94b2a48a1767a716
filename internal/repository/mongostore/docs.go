package mongostore

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Filter and update documents shared by the repositories. Array fields hold
// embedded documents keyed by "_id" with the author under "user".

func prependTo(field string, v interface{}) bson.M {
	return bson.M{"$push": bson.M{field: bson.M{"$each": bson.A{v}, "$position": 0}}}
}

func pullByID(field, id string) bson.M {
	return bson.M{"$pull": bson.M{field: bson.M{"_id": id}}}
}

// elemFilter matches the owner's document only while it still holds the
// array element.
func elemFilter(ownerKey, owner, field, id string) bson.M {
	return bson.M{ownerKey: owner, field + "._id": id}
}

// notLikedBy matches the post only if userID has not liked it yet, so a
// concurrent second like fails to match instead of duplicating.
func notLikedBy(postID, userID string) bson.M {
	return bson.M{"_id": postID, "likes.user": bson.M{"$ne": userID}}
}

func likedBy(postID, userID string) bson.M {
	return bson.M{"_id": postID, "likes.user": userID}
}

func pullLikeOf(userID string) bson.M {
	return bson.M{"$pull": bson.M{"likes": bson.M{"user": userID}}}
}

// resetTokenUpdate sets both reset fields, or unsets both when either is nil.
func resetTokenUpdate(token *string, expires *time.Time) bson.M {
	if token == nil || expires == nil {
		return bson.M{"$unset": clearResetFields()}
	}
	return bson.M{"$set": bson.M{"reset_password_token": *token, "reset_password_expires": *expires}}
}

func passwordUpdate(passwordHashed string) bson.M {
	return bson.M{
		"$set":   bson.M{"password": passwordHashed},
		"$unset": clearResetFields(),
	}
}

func clearResetFields() bson.M {
	return bson.M{"reset_password_token": "", "reset_password_expires": ""}
}

// activityOf matches posts carrying a like or comment by userID, and
// stripActivityOf removes them.
func activityOf(userID string) bson.M {
	return bson.M{"$or": bson.A{bson.M{"likes.user": userID}, bson.M{"comments.user": userID}}}
}

func stripActivityOf(userID string) bson.M {
	return bson.M{"$pull": bson.M{
		"likes":    bson.M{"user": userID},
		"comments": bson.M{"user": userID},
	}}
}
