// Package follows stores the directed follow relation between users as a
// set of (follower, followee) pairs. The pair is the primary key, so a pair
// exists at most once.
package follows

import "context"

type Repository interface {
	// Insert adds the edge. created is false when it already existed.
	Insert(ctx context.Context, followerID, followeeID int64) (created bool, err error)
	// Delete removes the edge. deleted is false when there was none.
	Delete(ctx context.Context, followerID, followeeID int64) (deleted bool, err error)
	Exists(ctx context.Context, followerID, followeeID int64) (bool, error)
}
