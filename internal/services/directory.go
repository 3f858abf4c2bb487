package services

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Shadow-TermDev/whats-links-backend/internal/authz"
	"github.com/Shadow-TermDev/whats-links-backend/internal/models"
	"github.com/Shadow-TermDev/whats-links-backend/internal/repository"
	"github.com/Shadow-TermDev/whats-links-backend/internal/token"
	"github.com/Shadow-TermDev/whats-links-backend/pkg/utils"
)

const minPasswordLength = 8

// DirectoryService orchestrates the authorization policy and the persistence
// engine. It owns every caller-facing rule; the engine only executes SQL.
// Every mutating operation brackets its writes and the Persist call with the
// engine lock, so the in-memory engine never snapshots a half-applied change.
type DirectoryService struct {
	engine repository.Engine
	tokens *token.Manager
	logger *slog.Logger
	now    func() time.Time
}

func NewDirectoryService(engine repository.Engine, tokens *token.Manager, logger *slog.Logger) *DirectoryService {
	return &DirectoryService{
		engine: engine,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
}

// AuthResult is what a successful login returns. The token is the session.
type AuthResult struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (s *DirectoryService) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// authorize runs the policy and translates a deny into the error taxonomy.
func (s *DirectoryService) authorize(actor authz.Actor, action authz.Action, resource authz.Resource) error {
	decision := authz.Decide(actor, action, resource)
	if decision.Allowed {
		return nil
	}
	switch decision.Reason {
	case authz.ReasonUnauthenticated:
		return authError("authentication required")
	case authz.ReasonAdminRequired:
		return forbiddenError("admin access required")
	case authz.ReasonAdminProtected:
		return forbiddenError("admin account cannot be deleted")
	default:
		return forbiddenError("you do not have permission to perform this action")
	}
}

// engineError maps an engine failure: a constraint rejection on a racing
// write is treated exactly like a pre-check failure, everything else is a
// storage fault.
func (s *DirectoryService) engineError(err error, conflictMsg string) error {
	if errors.Is(err, repository.ErrConstraint) {
		return conflictError(conflictMsg)
	}
	return storageError(err)
}

func (s *DirectoryService) persist() error {
	if err := s.engine.Persist(); err != nil {
		return storageError(err)
	}
	return nil
}

// Register creates a user with the default role. It never issues a token;
// callers log in separately.
func (s *DirectoryService) Register(username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return validationError("username and password are required")
	}
	if len(password) < minPasswordLength {
		return validationError("password must be at least 8 characters")
	}

	var existing models.User
	if err := s.engine.Read(&existing, "SELECT id FROM users WHERE username = ?", username); err != nil {
		return storageError(err)
	}
	if existing.ID != 0 {
		return conflictError("username already exists")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return storageError(err)
	}

	s.engine.Lock()
	defer s.engine.Unlock()

	_, err = s.engine.Write(
		"INSERT INTO users (username, password, role, created_at) VALUES (?, ?, ?, ?)",
		username, hash, models.RoleUser, s.timestamp(),
	)
	if err != nil {
		return s.engineError(err, "username already exists")
	}
	return s.persist()
}

// Authenticate verifies credentials and issues a session token. An unknown
// username and a wrong password fail identically.
func (s *DirectoryService) Authenticate(username, password string) (AuthResult, error) {
	username = strings.TrimSpace(username)

	var user models.User
	if err := s.engine.Read(&user, "SELECT id, username, password, role FROM users WHERE username = ?", username); err != nil {
		return AuthResult{}, storageError(err)
	}
	if user.ID == 0 || !utils.CheckPasswordHash(password, user.PasswordHash) {
		return AuthResult{}, authError("invalid credentials")
	}

	signed, err := s.tokens.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		return AuthResult{}, storageError(err)
	}
	return AuthResult{Token: signed, Username: user.Username, Role: user.Role}, nil
}

// ChangeUsername renames the actor and returns the stored (trimmed) name.
// Tokens already issued keep carrying the old username until the user logs in
// again; the claims are a snapshot.
func (s *DirectoryService) ChangeUsername(actor authz.Actor, newUsername string) (string, error) {
	if err := s.authorize(actor, authz.ActionChangeUsername, authz.Resource{}); err != nil {
		return "", err
	}

	newUsername = strings.TrimSpace(newUsername)
	if newUsername == "" {
		return "", validationError("new username is required")
	}

	var existing models.User
	if err := s.engine.Read(&existing, "SELECT id FROM users WHERE username = ?", newUsername); err != nil {
		return "", storageError(err)
	}
	if existing.ID != 0 && existing.ID != actor.ID {
		return "", conflictError("username already exists")
	}

	s.engine.Lock()
	defer s.engine.Unlock()

	if _, err := s.engine.Write("UPDATE users SET username = ? WHERE id = ?", newUsername, actor.ID); err != nil {
		return "", s.engineError(err, "username already exists")
	}
	if err := s.persist(); err != nil {
		return "", err
	}
	return newUsername, nil
}

// ListProfiles returns every user without password fields. Open to any
// authenticated caller.
func (s *DirectoryService) ListProfiles(actor authz.Actor) ([]models.Profile, error) {
	if err := s.authorize(actor, authz.ActionListProfiles, authz.Resource{}); err != nil {
		return nil, err
	}

	profiles := []models.Profile{}
	if err := s.engine.Read(&profiles, "SELECT id, username, role FROM users"); err != nil {
		return nil, storageError(err)
	}
	return profiles, nil
}

// DeleteAccount removes the actor's own account after re-verifying the
// password. Admin accounts cannot be deleted. Links owned by the account are
// kept; the listing resolves their owner as null.
func (s *DirectoryService) DeleteAccount(actor authz.Actor, password string) error {
	if actor.ID == 0 {
		return authError("authentication required")
	}
	if password == "" {
		return validationError("password is required")
	}

	var user models.User
	if err := s.engine.Read(&user, "SELECT id, username, password, role FROM users WHERE id = ?", actor.ID); err != nil {
		return storageError(err)
	}
	if user.ID == 0 {
		return notFoundError("user not found")
	}

	// Decide on the stored role, not the token snapshot.
	if err := s.authorize(authz.Actor{ID: user.ID, Username: user.Username, Role: user.Role},
		authz.ActionDeleteAccount, authz.Resource{}); err != nil {
		return err
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return authError("invalid credentials")
	}

	s.engine.Lock()
	defer s.engine.Unlock()

	if _, err := s.engine.Write("DELETE FROM users WHERE id = ?", user.ID); err != nil {
		return storageError(err)
	}
	return s.persist()
}

// ListCategories returns all categories ordered by name.
func (s *DirectoryService) ListCategories(actor authz.Actor) ([]models.CategorySummary, error) {
	if err := s.authorize(actor, authz.ActionListCategories, authz.Resource{}); err != nil {
		return nil, err
	}

	categories := []models.CategorySummary{}
	if err := s.engine.Read(&categories, "SELECT id, name FROM categories ORDER BY name ASC"); err != nil {
		return nil, storageError(err)
	}
	return categories, nil
}

// ListCategoriesWithOwner returns categories with their creator id.
func (s *DirectoryService) ListCategoriesWithOwner(actor authz.Actor) ([]models.Category, error) {
	if err := s.authorize(actor, authz.ActionListCategories, authz.Resource{}); err != nil {
		return nil, err
	}

	categories := []models.Category{}
	if err := s.engine.Read(&categories, "SELECT id, name, created_by FROM categories ORDER BY name ASC"); err != nil {
		return nil, storageError(err)
	}
	return categories, nil
}

// CreateCategory explicitly creates a category. Admin only; the name is
// trimmed before comparison and storage.
func (s *DirectoryService) CreateCategory(actor authz.Actor, name string) (int64, error) {
	if err := s.authorize(actor, authz.ActionCreateCategory, authz.Resource{}); err != nil {
		return 0, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return 0, validationError("category name is required")
	}

	var existing models.CategorySummary
	if err := s.engine.Read(&existing, "SELECT id, name FROM categories WHERE name = ?", name); err != nil {
		return 0, storageError(err)
	}
	if existing.ID != 0 {
		return 0, conflictError("category already exists")
	}

	s.engine.Lock()
	defer s.engine.Unlock()

	res, err := s.engine.Write(
		"INSERT INTO categories (name, created_by, created_at) VALUES (?, ?, ?)",
		name, actor.ID, s.timestamp(),
	)
	if err != nil {
		return 0, s.engineError(err, "category already exists")
	}
	if err := s.persist(); err != nil {
		return 0, err
	}
	return res.LastInsertID, nil
}

// DeleteCategoryByName removes a category by its trimmed name. Admin only.
// Links referencing it are kept with a dangling category id.
func (s *DirectoryService) DeleteCategoryByName(actor authz.Actor, name string) error {
	if err := s.authorize(actor, authz.ActionDeleteCategoryByName, authz.Resource{}); err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return validationError("category name is required")
	}

	s.engine.Lock()
	defer s.engine.Unlock()

	res, err := s.engine.Write("DELETE FROM categories WHERE name = ?", name)
	if err != nil {
		return storageError(err)
	}
	if res.RowsAffected == 0 {
		return notFoundError("category not found")
	}
	return s.persist()
}

// DeleteCategoryByID removes a category when the actor is an admin or its
// recorded creator.
func (s *DirectoryService) DeleteCategoryByID(actor authz.Actor, id int64) error {
	if actor.ID == 0 {
		return authError("authentication required")
	}

	var category models.Category
	if err := s.engine.Read(&category, "SELECT id, name, created_by FROM categories WHERE id = ?", id); err != nil {
		return storageError(err)
	}
	if category.ID == 0 {
		return notFoundError("category not found")
	}

	if err := s.authorize(actor, authz.ActionDeleteCategoryByID, authz.Resource{OwnerID: category.CreatedBy}); err != nil {
		return err
	}

	s.engine.Lock()
	defer s.engine.Unlock()

	if _, err := s.engine.Write("DELETE FROM categories WHERE id = ?", id); err != nil {
		return storageError(err)
	}
	return s.persist()
}

// SubmitLink stores a categorized link for the actor. The category is
// found-or-created by its normalized name; racing creators of the same new
// name converge on a single row through the conflict-ignoring insert.
func (s *DirectoryService) SubmitLink(actor authz.Actor, name, url, linkType, categoryName string) (models.Link, error) {
	if err := s.authorize(actor, authz.ActionSubmitLink, authz.Resource{}); err != nil {
		return models.Link{}, err
	}

	name = strings.TrimSpace(name)
	url = strings.TrimSpace(url)
	linkType = strings.ToLower(strings.TrimSpace(linkType))
	categoryName = strings.ToLower(strings.TrimSpace(categoryName))

	if name == "" || url == "" || linkType == "" || categoryName == "" {
		return models.Link{}, validationError("name, url, type and category are required")
	}
	if !models.ValidLinkType(linkType) {
		return models.Link{}, validationError("type must be canal or grupo")
	}

	s.engine.Lock()
	defer s.engine.Unlock()

	if _, err := s.engine.Write(
		"INSERT INTO categories (name, created_by, created_at) VALUES (?, ?, ?) ON CONFLICT(name) DO NOTHING",
		categoryName, actor.ID, s.timestamp(),
	); err != nil {
		return models.Link{}, storageError(err)
	}

	var category models.CategorySummary
	if err := s.engine.Read(&category, "SELECT id, name FROM categories WHERE name = ?", categoryName); err != nil {
		return models.Link{}, storageError(err)
	}
	if category.ID == 0 {
		return models.Link{}, storageError(errors.New("category lookup after upsert returned nothing"))
	}

	var existing models.Link
	if err := s.engine.Read(&existing, "SELECT id FROM links WHERE url = ? AND user_id = ?", url, actor.ID); err != nil {
		return models.Link{}, storageError(err)
	}
	if existing.ID != 0 {
		return models.Link{}, conflictError("link already submitted")
	}

	createdAt := s.now().UTC()
	res, err := s.engine.Write(
		"INSERT INTO links (user_id, name, url, type, category_id, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		actor.ID, name, url, linkType, category.ID, createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return models.Link{}, s.engineError(err, "link already submitted")
	}
	if err := s.persist(); err != nil {
		return models.Link{}, err
	}

	return models.Link{
		ID:         res.LastInsertID,
		UserID:     actor.ID,
		Name:       name,
		URL:        url,
		Type:       linkType,
		CategoryID: &category.ID,
		CreatedAt:  createdAt,
	}, nil
}

// ListLinks returns every link joined with its owner's username and category
// name, newest first. Deleted owners and categories come back as null.
func (s *DirectoryService) ListLinks(actor authz.Actor) ([]models.LinkView, error) {
	if err := s.authorize(actor, authz.ActionListLinks, authz.Resource{}); err != nil {
		return nil, err
	}

	links := []models.LinkView{}
	err := s.engine.Read(&links, `
		SELECT links.id, links.name, links.url, links.type,
		       users.username AS username, categories.name AS category
		FROM links
		LEFT JOIN users ON links.user_id = users.id
		LEFT JOIN categories ON links.category_id = categories.id
		ORDER BY links.created_at DESC, links.id DESC`)
	if err != nil {
		return nil, storageError(err)
	}
	return links, nil
}

// DeleteLink removes a link only when both id and owner match. A non-existent
// or non-owned id affects zero rows and still succeeds; deletion is
// idempotent and never reveals whether the row existed.
func (s *DirectoryService) DeleteLink(actor authz.Actor, linkID int64) error {
	if err := s.authorize(actor, authz.ActionDeleteLink, authz.Resource{}); err != nil {
		return err
	}

	s.engine.Lock()
	defer s.engine.Unlock()

	if _, err := s.engine.Write("DELETE FROM links WHERE id = ? AND user_id = ?", linkID, actor.ID); err != nil {
		return storageError(err)
	}
	return s.persist()
}
