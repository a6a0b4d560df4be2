// Package mongorepo is the MongoDB store driver. Ids are stored as ObjectIDs
// and exposed to the rest of the service as their hex form.
package mongorepo

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

const (
	usersCollection      = "users"
	tasksCollection      = "tasks"
	activitiesCollection = "activities"
)

func New(db *mongo.Database) repository.Store {
	return repository.Store{
		Users:      &UserRepository{coll: db.Collection(usersCollection)},
		Tasks:      &TaskRepository{coll: db.Collection(tasksCollection)},
		Activities: &ActivityRepository{coll: db.Collection(activitiesCollection)},
	}
}

// EnsureIndexes creates the unique user indexes and the owner-leading task
// and activity indexes. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		tasksCollection: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "status", Value: 1}}},
		},
		activitiesCollection: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "occurred_at", Value: -1}}},
		},
	}
	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes failed: %w", name, err)
		}
	}
	return nil
}

func translateError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicateKey
	}
	return err
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

type UserRepository struct {
	coll *mongo.Collection
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	id := primitive.NewObjectID()
	if user.ID != "" {
		parsed, err := primitive.ObjectIDFromHex(user.ID)
		if err != nil {
			return fmt.Errorf("create user failed: %w", err)
		}
		id = parsed
	}
	ts := now()
	doc := userDocument{
		ID:           id,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("create user failed: %w", translateError(err))
	}
	user.ID = id.Hex()
	user.CreatedAt = ts
	user.UpdatedAt = ts
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid}, "query user by id failed")
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, "query user by email failed")
}

func (r *UserRepository) FindConflict(ctx context.Context, username, email, excludeID string) (*model.User, error) {
	other := func(field, value string) bson.M {
		filter := bson.M{field: value}
		if excludeID != "" {
			if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
				filter["_id"] = bson.M{"$ne": oid}
			}
		}
		return filter
	}

	if email != "" {
		user, err := r.findOne(ctx, other("email", email), "query conflicting user failed")
		if user != nil || err != nil {
			return user, err
		}
	}
	if username != "" {
		return r.findOne(ctx, other("username", username), "query conflicting user failed")
	}
	return nil, nil
}

func (r *UserRepository) Update(ctx context.Context, id string, patch repository.UserPatch) (*model.User, error) {
	if patch.Empty() {
		return r.GetByID(ctx, id)
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	set := bson.M{"updated_at": now()}
	if patch.Username != nil {
		set["username"] = *patch.Username
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}

	var doc userDocument
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("update user failed: %w", translateError(err))
	}
	return doc.toModel(), nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, failMsg string) (*model.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", failMsg, err)
	}
	return doc.toModel(), nil
}

type TaskRepository struct {
	coll *mongo.Collection
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	owner, err := primitive.ObjectIDFromHex(task.OwnerID)
	if err != nil {
		return fmt.Errorf("create task failed: invalid owner id: %w", err)
	}
	if task.Status == "" {
		task.Status = model.TaskStatusPending
	}
	ts := now()
	doc := taskDocument{
		ID:          primitive.NewObjectID(),
		OwnerID:     owner,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("create task failed: %w", translateError(err))
	}
	task.ID = doc.ID.Hex()
	task.CreatedAt = ts
	task.UpdatedAt = ts
	return nil
}

func (r *TaskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]model.Task, error) {
	tasks := make([]model.Task, 0)
	owner, err := primitive.ObjectIDFromHex(filter.OwnerID)
	if err != nil {
		return tasks, nil
	}

	query := bson.M{"owner_id": owner}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(filter.EffectiveLimit()))
	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list tasks failed: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc taskDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode task failed: %w", err)
		}
		tasks = append(tasks, *doc.toModel())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks failed: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Get(ctx context.Context, scope repository.TaskScope) (*model.Task, error) {
	filter, ok, err := scopeFilter(scope)
	if err != nil || !ok {
		return nil, err
	}

	var doc taskDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task failed: %w", err)
	}
	return doc.toModel(), nil
}

func (r *TaskRepository) Update(ctx context.Context, scope repository.TaskScope, patch repository.TaskPatch) (*model.Task, error) {
	if patch.Empty() {
		return r.Get(ctx, scope)
	}
	filter, ok, err := scopeFilter(scope)
	if err != nil || !ok {
		return nil, err
	}

	set := bson.M{"updated_at": now()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}

	var doc taskDocument
	err = r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("update task failed: %w", err)
	}
	return doc.toModel(), nil
}

func (r *TaskRepository) Delete(ctx context.Context, scope repository.TaskScope) (*model.Task, error) {
	filter, ok, err := scopeFilter(scope)
	if err != nil || !ok {
		return nil, err
	}

	var doc taskDocument
	if err := r.coll.FindOneAndDelete(ctx, filter).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("delete task failed: %w", err)
	}
	return doc.toModel(), nil
}

// scopeFilter reports ok=false when either id cannot name a document.
func scopeFilter(scope repository.TaskScope) (bson.M, bool, error) {
	if err := scope.Validate(); err != nil {
		return nil, false, err
	}
	taskID, err := primitive.ObjectIDFromHex(scope.TaskID)
	if err != nil {
		return nil, false, nil
	}
	owner, err := primitive.ObjectIDFromHex(scope.OwnerID)
	if err != nil {
		return nil, false, nil
	}
	return bson.M{"_id": taskID, "owner_id": owner}, true, nil
}

type ActivityRepository struct {
	coll *mongo.Collection
}

func (r *ActivityRepository) Create(ctx context.Context, activity *model.Activity) error {
	id := primitive.NewObjectID()
	if activity.ID != "" {
		parsed, err := primitive.ObjectIDFromHex(activity.ID)
		if err != nil {
			return fmt.Errorf("create activity failed: %w", err)
		}
		id = parsed
	}
	owner, err := primitive.ObjectIDFromHex(activity.OwnerID)
	if err != nil {
		return fmt.Errorf("create activity failed: invalid owner id: %w", err)
	}
	taskID, err := primitive.ObjectIDFromHex(activity.TaskID)
	if err != nil {
		return fmt.Errorf("create activity failed: invalid task id: %w", err)
	}
	if activity.OccurredAt.IsZero() {
		activity.OccurredAt = now()
	}

	doc := activityDocument{
		ID:         id,
		OwnerID:    owner,
		TaskID:     taskID,
		Action:     string(activity.Action),
		TaskTitle:  activity.TaskTitle,
		OccurredAt: activity.OccurredAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("create activity failed: %w", translateError(err))
	}
	activity.ID = id.Hex()
	return nil
}

func (r *ActivityRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]model.Activity, error) {
	if limit <= 0 || limit > repository.MaxTaskList {
		limit = repository.MaxTaskList
	}
	activities := make([]model.Activity, 0)
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return activities, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, bson.M{"owner_id": owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("list activities failed: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc activityDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode activity failed: %w", err)
		}
		activities = append(activities, doc.toModel())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities failed: %w", err)
	}
	return activities, nil
}
