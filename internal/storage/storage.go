// Package storage provides the data access layer for the application: an
// in-process relational store over all entity collections, with id
// sequencing, composed read views, and cascading deletes.
//
// Absence of an id-addressed entity is never an error: getters return a
// nil result, deleters report false. List operations return empty slices
// when nothing matches. The error return is reserved for backend failures
// (the memory backend never produces one).
package storage

import (
	"context"

	"dealfeed/internal/models"
)

// Storage defines the full data store contract. Composed views
// (DealWithStore, ShoppingListWithItems, CommentWithUser, UserProfile) are
// assembled fresh on every read and must never be cached.
type Storage interface {
	// Stores
	ListStores(ctx context.Context) ([]models.Store, error)
	GetStore(ctx context.Context, id uint) (*models.Store, error)
	CreateStore(ctx context.Context, store *models.Store) error

	// Categories
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error

	// Deals. ListDeals joins each deal with its store, category, and
	// posting user; a deal whose store, category, or author does not
	// resolve is silently excluded. Results are sorted by createdAt
	// descending with no defined order among equal timestamps.
	ListDeals(ctx context.Context) ([]models.DealWithStore, error)
	GetDeal(ctx context.Context, id uint) (*models.Deal, error)
	CreateDeal(ctx context.Context, deal *models.Deal) error
	UpdateDealLikes(ctx context.Context, id uint, likes int) (*models.Deal, error)

	// Likes. CreateLike performs no uniqueness check: callers must follow
	// the check-then-act protocol (GetLike before CreateLike). DeleteLike
	// removes every row for the pair and reports whether any was removed.
	// Neither mutation touches the denormalized Deal.Likes counter.
	GetLike(ctx context.Context, dealID uint, userID string) (*models.Like, error)
	CreateLike(ctx context.Context, like *models.Like) error
	DeleteLike(ctx context.Context, dealID uint, userID string) (bool, error)
	CountDealLikes(ctx context.Context, dealID uint) (int, error)

	// Users. The store maintains indexes by id and by username; it does
	// not reject a duplicate username (enforced above the store).
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error

	// Followers. Follow upserts the ordered (follower, following) edge:
	// re-following overwrites with a fresh id (last write wins).
	Follow(ctx context.Context, followerID, followingID string) (*models.Follower, error)
	Unfollow(ctx context.Context, followerID, followingID string) (bool, error)
	ListFollowers(ctx context.Context, userID string) ([]models.UserProfile, error)
	ListFollowing(ctx context.Context, userID string) ([]models.UserProfile, error)
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)

	// Comments. ListComments is sorted by createdAt ascending and silently
	// drops comments whose author does not resolve.
	ListComments(ctx context.Context, dealID uint) ([]models.CommentWithUser, error)
	CreateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, id uint) (bool, error)

	// Chat messages. ListChatMessages matches the unordered user pair and
	// is sorted by createdAt ascending.
	ListChatMessages(ctx context.Context, userID1, userID2 string) ([]models.ChatMessage, error)
	CreateChatMessage(ctx context.Context, message *models.ChatMessage) error
	MarkMessageRead(ctx context.Context, id uint) (bool, error)

	// Shopping lists. List and Get decorate each list with its items and
	// item count. DeleteShoppingList cascades to the list's items and to
	// every share grant referencing it.
	ListShoppingLists(ctx context.Context, userID string) ([]models.ShoppingListWithItems, error)
	GetShoppingList(ctx context.Context, id uint) (*models.ShoppingListWithItems, error)
	CreateShoppingList(ctx context.Context, list *models.ShoppingList) error
	UpdateShoppingList(ctx context.Context, id uint, updates models.ShoppingListUpdate) (*models.ShoppingList, error)
	DeleteShoppingList(ctx context.Context, id uint) (bool, error)

	// Shopping list items
	ListShoppingListItems(ctx context.Context, listID uint) ([]models.ShoppingListItem, error)
	CreateShoppingListItem(ctx context.Context, item *models.ShoppingListItem) error
	UpdateShoppingListItem(ctx context.Context, id uint, updates models.ShoppingListItemUpdate) (*models.ShoppingListItem, error)
	DeleteShoppingListItem(ctx context.Context, id uint) (bool, error)

	// Share grants. ListSharedLists returns the decorated view of every
	// list shared with the user, skipping grants whose list is gone.
	ShareShoppingList(ctx context.Context, listID uint, sharedWithUserID string, canEdit bool) (*models.SharedList, error)
	ListSharedLists(ctx context.Context, userID string) ([]models.ShoppingListWithItems, error)
}
