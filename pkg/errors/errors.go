package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeSchema represents schema registry errors
	ErrorTypeSchema ErrorType = "schema"
	// ErrorTypeLoad represents bulk load errors
	ErrorTypeLoad ErrorType = "load"
	// ErrorTypeMutation represents mutation precondition violations
	ErrorTypeMutation ErrorType = "mutation"
	// ErrorTypeNotFound represents missing root entities
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeGraph represents graph database errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Schema Errors

// SchemaConflictError is returned when a type definition is reapplied with
// incompatible predicates
type SchemaConflictError struct {
	*BaseError
	TypeName  string
	Predicate string
}

func NewSchemaConflict(typeName, predicate, reason string) *SchemaConflictError {
	return &SchemaConflictError{
		BaseError: NewBaseError(ErrorTypeSchema, fmt.Sprintf("schema conflict on %s.%s: %s", typeName, predicate, reason), nil),
		TypeName:  typeName,
		Predicate: predicate,
	}
}

// Load Errors

// LoadBatchError is returned when a bulk-load transaction fails as a whole
type LoadBatchError struct {
	*BaseError
	EntityType string
	Records    int
}

func NewLoadBatchError(entityType string, records int, err error) *LoadBatchError {
	return &LoadBatchError{
		BaseError:  NewBaseError(ErrorTypeLoad, fmt.Sprintf("batch load of %d %s records failed", records, entityType), err),
		EntityType: entityType,
		Records:    records,
	}
}

// Mutation Errors

// DuplicateError is returned when a uniqueness invariant would be violated
type DuplicateError struct {
	*BaseError
	Field string
	Value string
}

func NewDuplicate(field, value string) *DuplicateError {
	return &DuplicateError{
		BaseError: NewBaseError(ErrorTypeMutation, fmt.Sprintf("%s already exists: %s", field, value), nil),
		Field:     field,
		Value:     value,
	}
}

// AlreadyFollowingError is returned when a follow edge already exists
type AlreadyFollowingError struct {
	*BaseError
	FollowerID string
	TargetID   string
}

func NewAlreadyFollowing(followerID, targetID string) *AlreadyFollowingError {
	return &AlreadyFollowingError{
		BaseError:  NewBaseError(ErrorTypeMutation, fmt.Sprintf("user %s already follows %s", followerID, targetID), nil),
		FollowerID: followerID,
		TargetID:   targetID,
	}
}

// SelfFollowError is returned when a user attempts to follow itself
type SelfFollowError struct {
	*BaseError
	UserID string
}

func NewSelfFollow(userID string) *SelfFollowError {
	return &SelfFollowError{
		BaseError: NewBaseError(ErrorTypeMutation, fmt.Sprintf("user %s cannot follow itself", userID), nil),
		UserID:    userID,
	}
}

// AlreadyMemberError is returned when a membership edge already exists
type AlreadyMemberError struct {
	*BaseError
	UserID      string
	CommunityID string
}

func NewAlreadyMember(userID, communityID string) *AlreadyMemberError {
	return &AlreadyMemberError{
		BaseError:   NewBaseError(ErrorTypeMutation, fmt.Sprintf("user %s is already a member of %s", userID, communityID), nil),
		UserID:      userID,
		CommunityID: communityID,
	}
}

// AlreadyLikedError is returned when a like edge already exists
type AlreadyLikedError struct {
	*BaseError
	UserID string
	PostID string
}

func NewAlreadyLiked(userID, postID string) *AlreadyLikedError {
	return &AlreadyLikedError{
		BaseError: NewBaseError(ErrorTypeMutation, fmt.Sprintf("user %s already liked %s", userID, postID), nil),
		UserID:    userID,
		PostID:    postID,
	}
}

// NotFoundError is returned when a referenced root entity does not exist
type NotFoundError struct {
	*BaseError
	Entity string
	Key    string
}

func NewNotFound(entity, key string) *NotFoundError {
	return &NotFoundError{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("%s not found: %s", entity, key), nil),
		Entity:    entity,
		Key:       key,
	}
}

// Graph Errors

// GraphConnectionError is returned when the Neo4j connection fails
type GraphConnectionError struct {
	*BaseError
	URI string
}

func NewGraphConnectionFailed(uri string, err error) *GraphConnectionError {
	return &GraphConnectionError{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to connect to Neo4j: %s", uri), err),
		URI:       uri,
	}
}

// GraphQueryError is returned when a graph query fails
type GraphQueryError struct {
	*BaseError
	Operation string
}

func NewGraphQueryFailed(operation string, err error) *GraphQueryError {
	return &GraphQueryError{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("query failed: %s", operation), err),
		Operation: operation,
	}
}

// UnknownTemplateError is returned when a query template name is not registered
type UnknownTemplateError struct {
	*BaseError
	Name string
}

func NewUnknownTemplate(name string) *UnknownTemplateError {
	return &UnknownTemplateError{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("unknown query template: %s", name), nil),
		Name:      name,
	}
}

// Config Errors

// ConfigMissingError is returned when a required config value is missing
type ConfigMissingError struct {
	*BaseError
	Field string
}

func NewConfigMissing(field string) *ConfigMissingError {
	return &ConfigMissingError{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	if baseErr, ok := err.(*BaseError); ok {
		return baseErr.Type == errType
	}
	if typed, ok := err.(interface{ Base() *BaseError }); ok {
		return typed.Base().Type == errType
	}
	if wrapped, ok := err.(interface{ Unwrap() error }); ok {
		if inner := wrapped.Unwrap(); inner != nil {
			return IsErrorType(inner, errType)
		}
	}
	return false
}

// Base exposes the embedded BaseError on each typed error so IsErrorType can
// classify them without enumerating every concrete type.
func (e *BaseError) Base() *BaseError { return e }

// IsNotFound reports whether err represents a missing entity
func IsNotFound(err error) bool {
	return IsErrorType(err, ErrorTypeNotFound)
}

// IsPrecondition reports whether err is a mutation precondition violation
// (duplicate, already-following, already-member, already-liked, self-follow)
func IsPrecondition(err error) bool {
	return IsErrorType(err, ErrorTypeMutation)
}
