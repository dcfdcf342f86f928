package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"dealfeed/internal/models"
)

// GormStore implements Storage over a gorm-managed database. Composed
// views are assembled in Go rather than with SQL joins so a dangling
// reference drops the row instead of failing the query, matching
// MemoryStore behavior exactly.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ Storage = (*GormStore)(nil)

// first runs a single-row query and maps gorm's not-found error to the
// (nil, nil) convention.
func first[T any](tx *gorm.DB) (*T, error) {
	var out T
	if err := tx.First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

// Store methods

func (s *GormStore) ListStores(ctx context.Context) ([]models.Store, error) {
	out := make([]models.Store, 0)
	err := s.db.WithContext(ctx).Order("id asc").Find(&out).Error
	return out, err
}

func (s *GormStore) GetStore(ctx context.Context, id uint) (*models.Store, error) {
	return first[models.Store](s.db.WithContext(ctx).Where("id = ?", id))
}

func (s *GormStore) CreateStore(ctx context.Context, store *models.Store) error {
	if err := s.db.WithContext(ctx).Create(store).Error; err != nil {
		return err
	}
	OpsTotal.WithLabelValues("store", "create").Inc()
	return nil
}

// Category methods

func (s *GormStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	out := make([]models.Category, 0)
	err := s.db.WithContext(ctx).Order("id asc").Find(&out).Error
	return out, err
}

func (s *GormStore) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	return first[models.Category](s.db.WithContext(ctx).Where("id = ?", id))
}

func (s *GormStore) CreateCategory(ctx context.Context, category *models.Category) error {
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		return err
	}
	OpsTotal.WithLabelValues("category", "create").Inc()
	return nil
}

// Deal methods

func (s *GormStore) ListDeals(ctx context.Context) ([]models.DealWithStore, error) {
	var deals []models.Deal
	if err := s.db.WithContext(ctx).Order("created_at desc, id desc").Find(&deals).Error; err != nil {
		return nil, err
	}

	stores, categories, users, err := s.joinTables(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.DealWithStore, 0, len(deals))
	for _, d := range deals {
		st, okS := stores[d.StoreID]
		cat, okC := categories[d.CategoryID]
		user, okU := users[d.UserID]
		if !okS || !okC || !okU {
			DroppedJoins.WithLabelValues("deal").Inc()
			continue
		}
		out = append(out, models.DealWithStore{
			Deal:     d,
			Store:    st,
			Category: cat,
			User:     user,
		})
	}
	return out, nil
}

func (s *GormStore) joinTables(ctx context.Context) (map[uint]models.Store, map[uint]models.Category, map[string]models.User, error) {
	var stores []models.Store
	if err := s.db.WithContext(ctx).Find(&stores).Error; err != nil {
		return nil, nil, nil, err
	}
	var categories []models.Category
	if err := s.db.WithContext(ctx).Find(&categories).Error; err != nil {
		return nil, nil, nil, err
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, nil, nil, err
	}

	storeMap := make(map[uint]models.Store, len(stores))
	for _, st := range stores {
		storeMap[st.ID] = st
	}
	catMap := make(map[uint]models.Category, len(categories))
	for _, c := range categories {
		catMap[c.ID] = c
	}
	userMap := make(map[string]models.User, len(users))
	for _, u := range users {
		userMap[u.Username] = u
	}
	return storeMap, catMap, userMap, nil
}

func (s *GormStore) GetDeal(ctx context.Context, id uint) (*models.Deal, error) {
	return first[models.Deal](s.db.WithContext(ctx).Where("id = ?", id))
}

func (s *GormStore) CreateDeal(ctx context.Context, deal *models.Deal) error {
	deal.CreatedAt = time.Now()
	deal.Likes = 0
	if err := s.db.WithContext(ctx).Create(deal).Error; err != nil {
		return err
	}
	OpsTotal.WithLabelValues("deal", "create").Inc()
	return nil
}

func (s *GormStore) UpdateDealLikes(ctx context.Context, id uint, likes int) (*models.Deal, error) {
	res := s.db.WithContext(ctx).Model(&models.Deal{}).Where("id = ?", id).Update("likes", likes)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	OpsTotal.WithLabelValues("deal", "update").Inc()
	return s.GetDeal(ctx, id)
}

// Like methods

func (s *GormStore) GetLike(ctx context.Context, dealID uint, userID string) (*models.Like, error) {
	return first[models.Like](s.db.WithContext(ctx).
		Where("deal_id = ? AND user_id = ?", dealID, userID).
		Order("id asc"))
}

func (s *GormStore) CreateLike(ctx context.Context, like *models.Like) error {
	if err := s.db.WithContext(ctx).Create(like).Error; err != nil {
		return err
	}
	OpsTotal.WithLabelValues("like", "create").Inc()
	return nil
}

func (s *GormStore) DeleteLike(ctx context.Context, dealID uint, userID string) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("deal_id = ? AND user_id = ?", dealID, userID).
		Delete(&models.Like{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	OpsTotal.WithLabelValues("like", "delete").Inc()
	return true, nil
}

func (s *GormStore) CountDealLikes(ctx context.Context, dealID uint) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Like{}).Where("deal_id = ?", dealID).Count(&n).Error
	return int(n), err
}

// User methods

func (s *GormStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return first[models.User](s.db.WithContext(ctx).Where("id = ?", id))
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return first[models.User](s.db.WithContext(ctx).
		Where("username = ?", username).
		Order("id desc"))
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	user.CreatedAt = time.Now()
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return err
	}
	OpsTotal.WithLabelValues("user", "create").Inc()
	return nil
}

// Follower methods

// Follow replaces any existing edge for the ordered pair so the edge
// always carries a fresh id and timestamp.
func (s *GormStore) Follow(ctx context.Context, followerID, followingID string) (*models.Follower, error) {
	edge := models.Follower{
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   time.Now(),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).
			Delete(&models.Follower{}).Error; err != nil {
			return err
		}
		return tx.Create(&edge).Error
	})
	if err != nil {
		return nil, err
	}
	OpsTotal.WithLabelValues("follower", "create").Inc()
	return &edge, nil
}

func (s *GormStore) Unfollow(ctx context.Context, followerID, followingID string) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follower{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	OpsTotal.WithLabelValues("follower", "delete").Inc()
	return true, nil
}

func (s *GormStore) ListFollowers(ctx context.Context, userID string) ([]models.UserProfile, error) {
	var edges []models.Follower
	if err := s.db.WithContext(ctx).
		Where("following_id = ?", userID).
		Order("id asc").
		Find(&edges).Error; err != nil {
		return nil, err
	}
	profiles := make([]models.UserProfile, 0, len(edges))
	for _, e := range edges {
		p, ok, err := s.profile(ctx, e.FollowerID)
		if err != nil {
			return nil, err
		}
		if !ok {
			DroppedJoins.WithLabelValues("user_profile").Inc()
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func (s *GormStore) ListFollowing(ctx context.Context, userID string) ([]models.UserProfile, error) {
	var edges []models.Follower
	if err := s.db.WithContext(ctx).
		Where("follower_id = ?", userID).
		Order("id asc").
		Find(&edges).Error; err != nil {
		return nil, err
	}
	profiles := make([]models.UserProfile, 0, len(edges))
	for _, e := range edges {
		p, ok, err := s.profile(ctx, e.FollowingID)
		if err != nil {
			return nil, err
		}
		if !ok {
			DroppedJoins.WithLabelValues("user_profile").Inc()
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func (s *GormStore) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Follower{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&n).Error
	return n > 0, err
}

func (s *GormStore) profile(ctx context.Context, username string) (models.UserProfile, bool, error) {
	u, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return models.UserProfile{}, false, err
	}
	if u == nil {
		return models.UserProfile{}, false, nil
	}
	var followers, following int64
	if err := s.db.WithContext(ctx).Model(&models.Follower{}).
		Where("following_id = ?", username).Count(&followers).Error; err != nil {
		return models.UserProfile{}, false, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Follower{}).
		Where("follower_id = ?", username).Count(&following).Error; err != nil {
		return models.UserProfile{}, false, err
	}
	return models.UserProfile{
		User:           *u,
		FollowersCount: int(followers),
		FollowingCount: int(following),
	}, true, nil
}

// Comment methods

func (s *GormStore) ListComments(ctx context.Context, dealID uint) ([]models.CommentWithUser, error) {
	var comments []models.Comment
	if err := s.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		Order("created_at asc, id asc").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	out := make([]models.CommentWithUser, 0, len(comments))
	for _, c := range comments {
		u, err := s.GetUserByUsername(ctx, c.UserID)
		if err != nil {
			return nil, err
		}
		if u == nil {
			DroppedJoins.WithLabelValues("comment").Inc()
			continue
		}
		out = append(out, models.CommentWithUser{Comment: c, User: *u})
	}
	return out, nil
}

func (s *GormStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.CreatedAt = time.Now()
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return err
	}
	OpsTotal.WithLabelValues("comment", "create").Inc()
	return nil
}

func (s *GormStore) DeleteComment(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Comment{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	OpsTotal.WithLabelValues("comment", "delete").Inc()
	return true, nil
}

// Chat message methods

func (s *GormStore) ListChatMessages(ctx context.Context, userID1, userID2 string) ([]models.ChatMessage, error) {
	out := make([]models.ChatMessage, 0)
	err := s.db.WithContext(ctx).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
			userID1, userID2, userID2, userID1).
		Order("created_at asc, id asc").
		Find(&out).Error
	return out, err
}

func (s *GormStore) CreateChatMessage(ctx context.Context, message *models.ChatMessage) error {
	message.CreatedAt = time.Now()
	message.ReadAt = nil
	if err := s.db.WithContext(ctx).Create(message).Error; err != nil {
		return err
	}
	OpsTotal.WithLabelValues("chat_message", "create").Inc()
	return nil
}

func (s *GormStore) MarkMessageRead(ctx context.Context, id uint) (bool, error) {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.ChatMessage{}).
		Where("id = ?", id).
		Update("read_at", &now)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	OpsTotal.WithLabelValues("chat_message", "update").Inc()
	return true, nil
}

// Shopping list methods

func (s *GormStore) ListShoppingLists(ctx context.Context, userID string) ([]models.ShoppingListWithItems, error) {
	var lists []models.ShoppingList
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&lists).Error; err != nil {
		return nil, err
	}
	out := make([]models.ShoppingListWithItems, 0, len(lists))
	for _, l := range lists {
		view, err := s.composeList(ctx, l)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *GormStore) GetShoppingList(ctx context.Context, id uint) (*models.ShoppingListWithItems, error) {
	l, err := first[models.ShoppingList](s.db.WithContext(ctx).Where("id = ?", id))
	if err != nil || l == nil {
		return nil, err
	}
	view, err := s.composeList(ctx, *l)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *GormStore) composeList(ctx context.Context, l models.ShoppingList) (models.ShoppingListWithItems, error) {
	items, err := s.ListShoppingListItems(ctx, l.ID)
	if err != nil {
		return models.ShoppingListWithItems{}, err
	}
	return models.ShoppingListWithItems{
		ShoppingList: l,
		Items:        items,
		ItemCount:    len(items),
	}, nil
}

func (s *GormStore) CreateShoppingList(ctx context.Context, list *models.ShoppingList) error {
	list.CreatedAt = time.Now()
	if err := s.db.WithContext(ctx).Create(list).Error; err != nil {
		return err
	}
	OpsTotal.WithLabelValues("shopping_list", "create").Inc()
	return nil
}

func (s *GormStore) UpdateShoppingList(ctx context.Context, id uint, updates models.ShoppingListUpdate) (*models.ShoppingList, error) {
	fields := map[string]any{}
	if updates.Name != nil {
		fields["name"] = *updates.Name
	}
	if updates.IsShared != nil {
		fields["is_shared"] = *updates.IsShared
	}
	if len(fields) > 0 {
		res := s.db.WithContext(ctx).Model(&models.ShoppingList{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, nil
		}
		OpsTotal.WithLabelValues("shopping_list", "update").Inc()
	}
	return first[models.ShoppingList](s.db.WithContext(ctx).Where("id = ?", id))
}

func (s *GormStore) DeleteShoppingList(ctx context.Context, id uint) (bool, error) {
	deleted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.ShoppingList{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		items := tx.Where("list_id = ?", id).Delete(&models.ShoppingListItem{})
		if items.Error != nil {
			return items.Error
		}
		CascadeDeletes.WithLabelValues("shopping_list_items").Add(float64(items.RowsAffected))
		grants := tx.Where("list_id = ?", id).Delete(&models.SharedList{})
		if grants.Error != nil {
			return grants.Error
		}
		CascadeDeletes.WithLabelValues("shared_lists").Add(float64(grants.RowsAffected))
		return nil
	})
	if err != nil {
		return false, err
	}
	if deleted {
		OpsTotal.WithLabelValues("shopping_list", "delete").Inc()
	}
	return deleted, nil
}

// Shopping list item methods

func (s *GormStore) ListShoppingListItems(ctx context.Context, listID uint) ([]models.ShoppingListItem, error) {
	out := make([]models.ShoppingListItem, 0)
	err := s.db.WithContext(ctx).
		Where("list_id = ?", listID).
		Order("created_at desc, id desc").
		Find(&out).Error
	return out, err
}

func (s *GormStore) CreateShoppingListItem(ctx context.Context, item *models.ShoppingListItem) error {
	item.CreatedAt = time.Now()
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return err
	}
	OpsTotal.WithLabelValues("shopping_list_item", "create").Inc()
	return nil
}

func (s *GormStore) UpdateShoppingListItem(ctx context.Context, id uint, updates models.ShoppingListItemUpdate) (*models.ShoppingListItem, error) {
	fields := map[string]any{}
	if updates.Name != nil {
		fields["name"] = *updates.Name
	}
	if updates.Quantity != nil {
		fields["quantity"] = *updates.Quantity
	}
	if updates.Price != nil {
		fields["price"] = updates.Price
	}
	if updates.Category != nil {
		fields["category"] = updates.Category
	}
	if updates.IsCompleted != nil {
		fields["is_completed"] = *updates.IsCompleted
	}
	if updates.Barcode != nil {
		fields["barcode"] = updates.Barcode
	}
	if len(fields) > 0 {
		res := s.db.WithContext(ctx).Model(&models.ShoppingListItem{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, nil
		}
		OpsTotal.WithLabelValues("shopping_list_item", "update").Inc()
	}
	return first[models.ShoppingListItem](s.db.WithContext(ctx).Where("id = ?", id))
}

func (s *GormStore) DeleteShoppingListItem(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ShoppingListItem{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	OpsTotal.WithLabelValues("shopping_list_item", "delete").Inc()
	return true, nil
}

// Share grant methods

func (s *GormStore) ShareShoppingList(ctx context.Context, listID uint, sharedWithUserID string, canEdit bool) (*models.SharedList, error) {
	grant := models.SharedList{
		ListID:           listID,
		SharedWithUserID: sharedWithUserID,
		CanEdit:          canEdit,
		CreatedAt:        time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&grant).Error; err != nil {
		return nil, err
	}
	OpsTotal.WithLabelValues("shared_list", "create").Inc()
	return &grant, nil
}

func (s *GormStore) ListSharedLists(ctx context.Context, userID string) ([]models.ShoppingListWithItems, error) {
	var grants []models.SharedList
	if err := s.db.WithContext(ctx).
		Where("shared_with_user_id = ?", userID).
		Order("id asc").
		Find(&grants).Error; err != nil {
		return nil, err
	}
	out := make([]models.ShoppingListWithItems, 0, len(grants))
	for _, g := range grants {
		l, err := first[models.ShoppingList](s.db.WithContext(ctx).Where("id = ?", g.ListID))
		if err != nil {
			return nil, err
		}
		if l == nil {
			DroppedJoins.WithLabelValues("shared_list").Inc()
			continue
		}
		view, err := s.composeList(ctx, *l)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}
