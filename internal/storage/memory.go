package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"dealfeed/internal/models"
)

// followPair is the ordered (follower, following) edge key.
type followPair struct {
	followerID  string
	followingID string
}

// MemoryStore is the default Storage backend: all state lives in process
// memory behind a single RWMutex, so every operation completes fully
// before another mutation may interleave. Id counters are per entity type,
// monotonic, and never reused even after deletion. The store is volatile;
// its lifetime is the process lifetime.
type MemoryStore struct {
	mu sync.RWMutex

	stores            map[uint]models.Store
	categories        map[uint]models.Category
	deals             map[uint]models.Deal
	likes             map[uint]models.Like
	users             map[uint]models.User
	usersByUsername   map[string]uint
	followers         map[followPair]models.Follower
	comments          map[uint]models.Comment
	chatMessages      map[uint]models.ChatMessage
	shoppingLists     map[uint]models.ShoppingList
	shoppingListItems map[uint]models.ShoppingListItem
	sharedLists       map[uint]models.SharedList

	storeSeq    uint
	categorySeq uint
	dealSeq     uint
	likeSeq     uint
	userSeq     uint
	followerSeq uint
	commentSeq  uint
	chatSeq     uint
	listSeq     uint
	itemSeq     uint
	grantSeq    uint
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		stores:            make(map[uint]models.Store),
		categories:        make(map[uint]models.Category),
		deals:             make(map[uint]models.Deal),
		likes:             make(map[uint]models.Like),
		users:             make(map[uint]models.User),
		usersByUsername:   make(map[string]uint),
		followers:         make(map[followPair]models.Follower),
		comments:          make(map[uint]models.Comment),
		chatMessages:      make(map[uint]models.ChatMessage),
		shoppingLists:     make(map[uint]models.ShoppingList),
		shoppingListItems: make(map[uint]models.ShoppingListItem),
		sharedLists:       make(map[uint]models.SharedList),
	}
}

var _ Storage = (*MemoryStore)(nil)

// Store methods

func (s *MemoryStore) ListStores(_ context.Context) ([]models.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Store, 0, len(s.stores))
	for _, st := range s.stores {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetStore(_ context.Context, id uint) (*models.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.stores[id]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (s *MemoryStore) CreateStore(_ context.Context, store *models.Store) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.storeSeq++
	store.ID = s.storeSeq
	s.stores[store.ID] = *store
	OpsTotal.WithLabelValues("store", "create").Inc()
	return nil
}

// Category methods

func (s *MemoryStore) ListCategories(_ context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetCategory(_ context.Context, id uint) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *MemoryStore) CreateCategory(_ context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categorySeq++
	category.ID = s.categorySeq
	s.categories[category.ID] = *category
	OpsTotal.WithLabelValues("category", "create").Inc()
	return nil
}

// Deal methods

func (s *MemoryStore) ListDeals(_ context.Context) ([]models.DealWithStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.DealWithStore, 0, len(s.deals))
	for _, d := range s.deals {
		view, ok := s.composeDealLocked(d)
		if !ok {
			DroppedJoins.WithLabelValues("deal").Inc()
			continue
		}
		out = append(out, view)
	}
	// Most recent first; no defined order among equal timestamps.
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// composeDealLocked joins a deal with its store, category, and author.
// Returns ok=false when any reference does not resolve; such deals are
// invisible in listings rather than an error. Caller must hold the lock.
func (s *MemoryStore) composeDealLocked(d models.Deal) (models.DealWithStore, bool) {
	st, ok := s.stores[d.StoreID]
	if !ok {
		return models.DealWithStore{}, false
	}
	cat, ok := s.categories[d.CategoryID]
	if !ok {
		return models.DealWithStore{}, false
	}
	user, ok := s.userByUsernameLocked(d.UserID)
	if !ok {
		return models.DealWithStore{}, false
	}
	return models.DealWithStore{
		Deal:     d,
		Store:    st,
		Category: cat,
		User:     user,
	}, true
}

func (s *MemoryStore) GetDeal(_ context.Context, id uint) (*models.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.deals[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (s *MemoryStore) CreateDeal(_ context.Context, deal *models.Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dealSeq++
	deal.ID = s.dealSeq
	deal.CreatedAt = time.Now()
	deal.Likes = 0
	s.deals[deal.ID] = *deal
	OpsTotal.WithLabelValues("deal", "create").Inc()
	return nil
}

func (s *MemoryStore) UpdateDealLikes(_ context.Context, id uint, likes int) (*models.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.deals[id]
	if !ok {
		return nil, nil
	}
	d.Likes = likes
	s.deals[id] = d
	OpsTotal.WithLabelValues("deal", "update").Inc()
	return &d, nil
}

// Like methods

func (s *MemoryStore) GetLike(_ context.Context, dealID uint, userID string) (*models.Like, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *models.Like
	for id, l := range s.likes {
		if l.DealID != dealID || l.UserID != userID {
			continue
		}
		if found == nil || id < found.ID {
			l := l
			found = &l
		}
	}
	return found, nil
}

// CreateLike inserts unconditionally. A duplicate (dealId, userId) insert
// produces a second row; callers must GetLike first (check-then-act).
func (s *MemoryStore) CreateLike(_ context.Context, like *models.Like) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.likeSeq++
	like.ID = s.likeSeq
	s.likes[like.ID] = *like
	OpsTotal.WithLabelValues("like", "create").Inc()
	return nil
}

// DeleteLike removes every row for the pair, so a pair duplicated by a
// misbehaving caller is fully repaired by one delete.
func (s *MemoryStore) DeleteLike(_ context.Context, dealID uint, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := false
	for id, l := range s.likes {
		if l.DealID == dealID && l.UserID == userID {
			delete(s.likes, id)
			deleted = true
		}
	}
	if deleted {
		OpsTotal.WithLabelValues("like", "delete").Inc()
	}
	return deleted, nil
}

func (s *MemoryStore) CountDealLikes(_ context.Context, dealID uint) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, l := range s.likes {
		if l.DealID == dealID {
			n++
		}
	}
	return n, nil
}

// User methods

func (s *MemoryStore) GetUser(_ context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.userByUsernameLocked(username)
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *MemoryStore) userByUsernameLocked(username string) (models.User, bool) {
	id, ok := s.usersByUsername[username]
	if !ok {
		return models.User{}, false
	}
	u, ok := s.users[id]
	return u, ok
}

// CreateUser updates both the id and the username index together. A reused
// username repoints the username index to the newest user; uniqueness is
// enforced above the store (service.UserService.Register).
func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userSeq++
	user.ID = s.userSeq
	user.CreatedAt = time.Now()
	s.users[user.ID] = *user
	s.usersByUsername[user.Username] = user.ID
	OpsTotal.WithLabelValues("user", "create").Inc()
	return nil
}

// Follower methods

func (s *MemoryStore) Follow(_ context.Context, followerID, followingID string) (*models.Follower, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.followerSeq++
	edge := models.Follower{
		ID:          s.followerSeq,
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   time.Now(),
	}
	// Last write wins on a duplicate ordered pair; the old edge's id is
	// never reused.
	s.followers[followPair{followerID, followingID}] = edge
	OpsTotal.WithLabelValues("follower", "create").Inc()
	return &edge, nil
}

func (s *MemoryStore) Unfollow(_ context.Context, followerID, followingID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := followPair{followerID, followingID}
	if _, ok := s.followers[key]; !ok {
		return false, nil
	}
	delete(s.followers, key)
	OpsTotal.WithLabelValues("follower", "delete").Inc()
	return true, nil
}

func (s *MemoryStore) ListFollowers(_ context.Context, userID string) ([]models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edges := s.edgesLocked(func(f models.Follower) bool { return f.FollowingID == userID })
	profiles := make([]models.UserProfile, 0, len(edges))
	for _, e := range edges {
		p, ok := s.profileLocked(e.FollowerID)
		if !ok {
			DroppedJoins.WithLabelValues("user_profile").Inc()
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func (s *MemoryStore) ListFollowing(_ context.Context, userID string) ([]models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edges := s.edgesLocked(func(f models.Follower) bool { return f.FollowerID == userID })
	profiles := make([]models.UserProfile, 0, len(edges))
	for _, e := range edges {
		p, ok := s.profileLocked(e.FollowingID)
		if !ok {
			DroppedJoins.WithLabelValues("user_profile").Inc()
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func (s *MemoryStore) IsFollowing(_ context.Context, followerID, followingID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.followers[followPair{followerID, followingID}]
	return ok, nil
}

// edgesLocked returns matching edges ordered by edge creation time so
// profile listings are stable. Caller must hold the lock.
func (s *MemoryStore) edgesLocked(match func(models.Follower) bool) []models.Follower {
	var edges []models.Follower
	for _, f := range s.followers {
		if match(f) {
			edges = append(edges, f)
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })
	return edges
}

// profileLocked builds a UserProfile with follower/following counts
// computed live over the edge set. Caller must hold the lock.
func (s *MemoryStore) profileLocked(username string) (models.UserProfile, bool) {
	u, ok := s.userByUsernameLocked(username)
	if !ok {
		return models.UserProfile{}, false
	}
	followers, following := 0, 0
	for _, f := range s.followers {
		if f.FollowingID == u.Username {
			followers++
		}
		if f.FollowerID == u.Username {
			following++
		}
	}
	return models.UserProfile{
		User:           u,
		FollowersCount: followers,
		FollowingCount: following,
	}, true
}

// Comment methods

func (s *MemoryStore) ListComments(_ context.Context, dealID uint) ([]models.CommentWithUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Comment
	for _, c := range s.comments {
		if c.DealID == dealID {
			matched = append(matched, c)
		}
	}
	// Oldest first, the opposite order from deal listings.
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	out := make([]models.CommentWithUser, 0, len(matched))
	for _, c := range matched {
		u, ok := s.userByUsernameLocked(c.UserID)
		if !ok {
			DroppedJoins.WithLabelValues("comment").Inc()
			continue
		}
		out = append(out, models.CommentWithUser{Comment: c, User: u})
	}
	return out, nil
}

func (s *MemoryStore) CreateComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.commentSeq++
	comment.ID = s.commentSeq
	comment.CreatedAt = time.Now()
	s.comments[comment.ID] = *comment
	OpsTotal.WithLabelValues("comment", "create").Inc()
	return nil
}

func (s *MemoryStore) DeleteComment(_ context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return false, nil
	}
	delete(s.comments, id)
	OpsTotal.WithLabelValues("comment", "delete").Inc()
	return true, nil
}

// Chat message methods

func (s *MemoryStore) ListChatMessages(_ context.Context, userID1, userID2 string) ([]models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.ChatMessage
	for _, m := range s.chatMessages {
		if (m.FromUserID == userID1 && m.ToUserID == userID2) ||
			(m.FromUserID == userID2 && m.ToUserID == userID1) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if out == nil {
		out = []models.ChatMessage{}
	}
	return out, nil
}

func (s *MemoryStore) CreateChatMessage(_ context.Context, message *models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chatSeq++
	message.ID = s.chatSeq
	message.CreatedAt = time.Now()
	message.ReadAt = nil
	s.chatMessages[message.ID] = *message
	OpsTotal.WithLabelValues("chat_message", "create").Inc()
	return nil
}

func (s *MemoryStore) MarkMessageRead(_ context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.chatMessages[id]
	if !ok {
		return false, nil
	}
	now := time.Now()
	m.ReadAt = &now
	s.chatMessages[id] = m
	OpsTotal.WithLabelValues("chat_message", "update").Inc()
	return true, nil
}

// Shopping list methods

func (s *MemoryStore) ListShoppingLists(_ context.Context, userID string) ([]models.ShoppingListWithItems, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ShoppingListWithItems, 0)
	for _, l := range s.shoppingLists {
		if l.UserID == userID {
			out = append(out, s.composeListLocked(l))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) GetShoppingList(_ context.Context, id uint) (*models.ShoppingListWithItems, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.shoppingLists[id]
	if !ok {
		return nil, nil
	}
	view := s.composeListLocked(l)
	return &view, nil
}

// composeListLocked decorates a list with its items and item count.
// Caller must hold the lock.
func (s *MemoryStore) composeListLocked(l models.ShoppingList) models.ShoppingListWithItems {
	items := s.itemsLocked(l.ID)
	return models.ShoppingListWithItems{
		ShoppingList: l,
		Items:        items,
		ItemCount:    len(items),
	}
}

func (s *MemoryStore) CreateShoppingList(_ context.Context, list *models.ShoppingList) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listSeq++
	list.ID = s.listSeq
	list.CreatedAt = time.Now()
	s.shoppingLists[list.ID] = *list
	OpsTotal.WithLabelValues("shopping_list", "create").Inc()
	return nil
}

func (s *MemoryStore) UpdateShoppingList(_ context.Context, id uint, updates models.ShoppingListUpdate) (*models.ShoppingList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.shoppingLists[id]
	if !ok {
		return nil, nil
	}
	if updates.Name != nil {
		l.Name = *updates.Name
	}
	if updates.IsShared != nil {
		l.IsShared = *updates.IsShared
	}
	s.shoppingLists[id] = l
	OpsTotal.WithLabelValues("shopping_list", "update").Inc()
	return &l, nil
}

// DeleteShoppingList removes the list, every item on it, and every share
// grant referencing it.
func (s *MemoryStore) DeleteShoppingList(_ context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shoppingLists[id]; !ok {
		return false, nil
	}
	for itemID, item := range s.shoppingListItems {
		if item.ListID == id {
			delete(s.shoppingListItems, itemID)
			CascadeDeletes.WithLabelValues("shopping_list_items").Inc()
		}
	}
	for grantID, grant := range s.sharedLists {
		if grant.ListID == id {
			delete(s.sharedLists, grantID)
			CascadeDeletes.WithLabelValues("shared_lists").Inc()
		}
	}
	delete(s.shoppingLists, id)
	OpsTotal.WithLabelValues("shopping_list", "delete").Inc()
	return true, nil
}

// Shopping list item methods

func (s *MemoryStore) ListShoppingListItems(_ context.Context, listID uint) ([]models.ShoppingListItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.itemsLocked(listID), nil
}

// itemsLocked returns a list's items, most recent first. Caller must hold
// the lock.
func (s *MemoryStore) itemsLocked(listID uint) []models.ShoppingListItem {
	items := make([]models.ShoppingListItem, 0)
	for _, item := range s.shoppingListItems {
		if item.ListID == listID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items
}

func (s *MemoryStore) CreateShoppingListItem(_ context.Context, item *models.ShoppingListItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.itemSeq++
	item.ID = s.itemSeq
	item.CreatedAt = time.Now()
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	s.shoppingListItems[item.ID] = *item
	OpsTotal.WithLabelValues("shopping_list_item", "create").Inc()
	return nil
}

func (s *MemoryStore) UpdateShoppingListItem(_ context.Context, id uint, updates models.ShoppingListItemUpdate) (*models.ShoppingListItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.shoppingListItems[id]
	if !ok {
		return nil, nil
	}
	if updates.Name != nil {
		item.Name = *updates.Name
	}
	if updates.Quantity != nil {
		item.Quantity = *updates.Quantity
	}
	if updates.Price != nil {
		item.Price = updates.Price
	}
	if updates.Category != nil {
		item.Category = updates.Category
	}
	if updates.IsCompleted != nil {
		item.IsCompleted = *updates.IsCompleted
	}
	if updates.Barcode != nil {
		item.Barcode = updates.Barcode
	}
	s.shoppingListItems[id] = item
	OpsTotal.WithLabelValues("shopping_list_item", "update").Inc()
	return &item, nil
}

func (s *MemoryStore) DeleteShoppingListItem(_ context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shoppingListItems[id]; !ok {
		return false, nil
	}
	delete(s.shoppingListItems, id)
	OpsTotal.WithLabelValues("shopping_list_item", "delete").Inc()
	return true, nil
}

// Share grant methods

func (s *MemoryStore) ShareShoppingList(_ context.Context, listID uint, sharedWithUserID string, canEdit bool) (*models.SharedList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.grantSeq++
	grant := models.SharedList{
		ID:               s.grantSeq,
		ListID:           listID,
		SharedWithUserID: sharedWithUserID,
		CanEdit:          canEdit,
		CreatedAt:        time.Now(),
	}
	s.sharedLists[grant.ID] = grant
	OpsTotal.WithLabelValues("shared_list", "create").Inc()
	return &grant, nil
}

func (s *MemoryStore) ListSharedLists(_ context.Context, userID string) ([]models.ShoppingListWithItems, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var grants []models.SharedList
	for _, g := range s.sharedLists {
		if g.SharedWithUserID == userID {
			grants = append(grants, g)
		}
	}
	sort.Slice(grants, func(i, j int) bool { return grants[i].ID < grants[j].ID })

	out := make([]models.ShoppingListWithItems, 0, len(grants))
	for _, g := range grants {
		l, ok := s.shoppingLists[g.ListID]
		if !ok {
			// Grant outlived its list; skip it.
			DroppedJoins.WithLabelValues("shared_list").Inc()
			continue
		}
		out = append(out, s.composeListLocked(l))
	}
	return out, nil
}
