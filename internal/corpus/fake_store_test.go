// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package corpus_test

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/lexica/internal/corpus"
	"github.com/taibuivan/lexica/internal/platform/dberr"
)

// memoryRepository is an in-memory [corpus.Repository] mirroring the
// Postgres semantics closely enough for service and handler tests.
type memoryRepository struct {
	mu sync.Mutex

	nextCorpusID int64
	nextListID   int64

	corpora     map[int64]*corpus.Corpus
	tokens      map[int64][]corpus.WordToken
	corpusUsers map[int64]map[string]bool
	lists       map[int64]*corpus.ControlList
	listUsers   map[int64]map[string]bool
	allowed     map[corpus.Scope]map[corpus.AllowedType][]corpus.AllowedValue
	usernames   map[string]string

	// registerErr, when set, fails Register after validation.
	registerErr   error
	registerCalls int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		corpora:     make(map[int64]*corpus.Corpus),
		tokens:      make(map[int64][]corpus.WordToken),
		corpusUsers: make(map[int64]map[string]bool),
		lists:       make(map[int64]*corpus.ControlList),
		listUsers:   make(map[int64]map[string]bool),
		allowed:     make(map[corpus.Scope]map[corpus.AllowedType][]corpus.AllowedValue),
		usernames:   make(map[string]string),
	}
}

// addControlList seeds a shared list owned by ownerID.
func (repo *memoryRepository) addControlList(name string, public bool, ownerID string) int64 {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.nextListID++
	id := repo.nextListID
	repo.lists[id] = &corpus.ControlList{ID: id, Name: name, IsPublic: public}
	repo.listUsers[id] = map[string]bool{}
	if ownerID != "" {
		repo.listUsers[id][ownerID] = true
	}
	return id
}

func (repo *memoryRepository) addAllowed(scope corpus.Scope, allowedType corpus.AllowedType, values ...corpus.AllowedValue) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if repo.allowed[scope] == nil {
		repo.allowed[scope] = make(map[corpus.AllowedType][]corpus.AllowedValue)
	}
	repo.allowed[scope][allowedType] = append(repo.allowed[scope][allowedType], values...)
}

func (repo *memoryRepository) Register(_ context.Context, registration *corpus.Registration) (int64, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.registerCalls++
	if repo.registerErr != nil {
		return 0, repo.registerErr
	}

	for _, existing := range repo.corpora {
		if existing.Name == registration.Name {
			return 0, corpus.ErrNameTaken
		}
	}

	listID := registration.ControlListID
	ownsList := listID == 0
	if ownsList {
		repo.nextListID++
		listID = repo.nextListID
		repo.lists[listID] = &corpus.ControlList{ID: listID, Name: registration.Name}
		repo.listUsers[listID] = map[string]bool{}
	}
	if _, linked := repo.listUsers[listID][registration.OwnerID]; !linked {
		repo.listUsers[listID][registration.OwnerID] = ownsList
	}

	repo.nextCorpusID++
	corpusID := repo.nextCorpusID
	repo.corpora[corpusID] = &corpus.Corpus{
		ID:              corpusID,
		Name:            registration.Name,
		ControlListID:   listID,
		ControlListName: repo.lists[listID].Name,
		ContextLeft:     registration.ContextLeft,
		ContextRight:    registration.ContextRight,
		CreatedAt:       time.Now(),
	}
	repo.tokens[corpusID] = slices.Clone(registration.Tokens)
	repo.corpusUsers[corpusID] = map[string]bool{registration.OwnerID: true}

	scope := corpus.Scope{Kind: corpus.ScopeControlList, ID: listID}
	if !ownsList {
		scope = corpus.Scope{Kind: corpus.ScopeCorpus, ID: corpusID}
	}
	for _, entry := range registration.Allowed.Entries() {
		if repo.allowed[scope] == nil {
			repo.allowed[scope] = make(map[corpus.AllowedType][]corpus.AllowedValue)
		}
		repo.allowed[scope][entry.Category] = append(repo.allowed[scope][entry.Category], entry.Value)
	}

	return corpusID, nil
}

func (repo *memoryRepository) FindByID(_ context.Context, id int64) (*corpus.Corpus, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	found, ok := repo.corpora[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	clone := *found
	return &clone, nil
}

func (repo *memoryRepository) HasAccess(_ context.Context, corpusID int64, userID string) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	_, ok := repo.corpusUsers[corpusID][userID]
	return ok, nil
}

func (repo *memoryRepository) ListForUser(_ context.Context, userID string) ([]corpus.Summary, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var summaries []corpus.Summary
	for id, users := range repo.corpusUsers {
		if _, ok := users[userID]; ok {
			summaries = append(summaries, corpus.Summary{ID: id, Name: repo.corpora[id].Name})
		}
	}
	slices.SortFunc(summaries, func(a, b corpus.Summary) int { return strings.Compare(a.Name, b.Name) })
	return summaries, nil
}

func (repo *memoryRepository) CountTokens(_ context.Context, corpusID int64) (int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return len(repo.tokens[corpusID]), nil
}

func (repo *memoryRepository) ListTokens(_ context.Context, corpusID int64) ([]corpus.WordToken, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return slices.Clone(repo.tokens[corpusID]), nil
}

func (repo *memoryRepository) Owners(_ context.Context, corpusID int64) ([]string, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var owners []string
	for userID, isOwner := range repo.corpusUsers[corpusID] {
		if isOwner {
			owners = append(owners, repo.usernames[userID])
		}
	}
	slices.Sort(owners)
	return owners, nil
}

func (repo *memoryRepository) ControlListAccessible(_ context.Context, controlListID int64, userID string, admin bool) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	list, ok := repo.lists[controlListID]
	if !ok {
		return false, nil
	}
	_, linked := repo.listUsers[controlListID][userID]
	return list.IsPublic || admin || linked, nil
}

func (repo *memoryRepository) ListControlLists(_ context.Context, userID string, admin bool) ([]corpus.ControlList, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var lists []corpus.ControlList
	for id, list := range repo.lists {
		if _, linked := repo.listUsers[id][userID]; list.IsPublic || admin || linked {
			lists = append(lists, *list)
		}
	}
	slices.SortFunc(lists, func(a, b corpus.ControlList) int { return strings.Compare(a.Name, b.Name) })
	return lists, nil
}

func (repo *memoryRepository) CountAllowedValues(_ context.Context, scope corpus.Scope, allowedType corpus.AllowedType) (int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return len(repo.allowed[scope][allowedType]), nil
}

func (repo *memoryRepository) ListAllowedValues(_ context.Context, scope corpus.Scope, allowedType corpus.AllowedType) ([]corpus.AllowedValue, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	values := slices.Clone(repo.allowed[scope][allowedType])
	slices.SortStableFunc(values, func(a, b corpus.AllowedValue) int { return strings.Compare(a.Label, b.Label) })
	return values, nil
}

func (repo *memoryRepository) SearchAllowedValues(ctx context.Context, scope corpus.Scope, allowedType corpus.AllowedType, prefix string, limit int) ([]corpus.AllowedValue, error) {
	all, _ := repo.ListAllowedValues(ctx, scope, allowedType)

	var (
		result []corpus.AllowedValue
		seen   = map[corpus.AllowedValue]bool{}
	)
	for _, value := range all {
		if value.Label == "" || !strings.HasPrefix(value.Label, prefix) || seen[value] {
			continue
		}
		seen[value] = true
		result = append(result, value)
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (repo *memoryRepository) SearchTokenValues(_ context.Context, corpusID int64, allowedType corpus.AllowedType, prefix string, limit int) ([]string, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var values []string
	for _, token := range repo.tokens[corpusID] {
		value := token.Lemma
		switch allowedType {
		case corpus.AllowedPOS:
			value = token.POS
		case corpus.AllowedMorph:
			value = token.Morph
		}
		if value != "" && strings.HasPrefix(value, prefix) && !slices.Contains(values, value) {
			values = append(values, value)
		}
	}
	slices.Sort(values)
	if len(values) > limit {
		values = values[:limit]
	}
	return values, nil
}
