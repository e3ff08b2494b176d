package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"reslocate/internal/database"
	"reslocate/internal/models"
	"reslocate/internal/utils"
)

// MaxAttempts is the hard cap on failed code comparisons per request.
// Once reached, the record is locked and no further comparison happens.
const MaxAttempts = 5

type VerificationRepository interface {
	Create(ctx context.Context, req *models.VerificationRequest) (*models.VerificationRequest, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.VerificationRequest, error)
	FindPendingByContactAndCode(ctx context.Context, contact, contactType, code string) (*models.VerificationRequest, error)
	IncrementAttempts(ctx context.Context, id primitive.ObjectID) (*models.VerificationRequest, error)
	MarkVerified(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error)
}

type verificationRepository struct {
	db database.Service
}

func NewVerificationRepository(db database.Service) VerificationRepository {
	return &verificationRepository{db: db}
}

func (r *verificationRepository) collection() *mongo.Collection {
	return r.db.Client().Database("reslocate").Collection("verification_requests")
}

func (r *verificationRepository) Create(ctx context.Context, req *models.VerificationRequest) (*models.VerificationRequest, error) {
	queryType := "create"
	repository := "verification"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	req.ID = primitive.NewObjectID()
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt

	_, err := r.collection().InsertOne(ctx, req)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		log.Error().Err(err).Str("contact_type", req.ContactType).Msg("Failed to insert verification request")
		return nil, fmt.Errorf("failed to create verification request: %w", err)
	}
	return req, nil
}

func (r *verificationRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.VerificationRequest, error) {
	queryType := "findById"
	repository := "verification"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	var req models.VerificationRequest
	err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, err
	}
	return &req, nil
}

func (r *verificationRepository) FindPendingByContactAndCode(ctx context.Context, contact, contactType, code string) (*models.VerificationRequest, error) {
	queryType := "findPendingByContactAndCode"
	repository := "verification"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	filter := bson.M{
		"contact":      contact,
		"contact_type": contactType,
		"code":         code,
		"is_verified":  false,
	}
	// Newest record wins when several codes are outstanding for one contact.
	opts := options.FindOne().SetSort(bson.M{"created_at": -1})

	var req models.VerificationRequest
	err := r.collection().FindOne(ctx, filter, opts).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, err
	}
	return &req, nil
}

// IncrementAttempts bumps the attempt counter atomically on the server so
// racing submissions can never lose an increment. The guard filter refuses
// records already verified or at the attempt cap; (nil, nil) means the
// guard rejected the update and the caller must re-read to learn why.
func (r *verificationRepository) IncrementAttempts(ctx context.Context, id primitive.ObjectID) (*models.VerificationRequest, error) {
	queryType := "incrementAttempts"
	repository := "verification"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	filter := bson.M{
		"_id":         id,
		"is_verified": false,
		"attempts":    bson.M{"$lt": MaxAttempts},
	}
	update := bson.M{
		"$inc": bson.M{"attempts": 1},
		"$set": bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var req models.VerificationRequest
	err := r.collection().FindOneAndUpdate(ctx, filter, update, opts).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		log.Error().Err(err).Str("verification_id", id.Hex()).Msg("Failed to increment verification attempts")
		return nil, err
	}
	return &req, nil
}

// MarkVerified flips is_verified exactly once. The is_verified:false filter
// makes the transition write-once: a second caller sees modified==false.
func (r *verificationRepository) MarkVerified(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	queryType := "markVerified"
	repository := "verification"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	filter := bson.M{"_id": id, "is_verified": false}
	update := bson.M{"$set": bson.M{
		"is_verified": true,
		"verified_at": at,
		"updated_at":  at,
	}}

	res, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		log.Error().Err(err).Str("verification_id", id.Hex()).Msg("Failed to mark verification request verified")
		return false, err
	}
	return res.ModifiedCount == 1, nil
}
