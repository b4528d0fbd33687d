package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/i11iaore1/to-do-list-pet-backend/internal/authz"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/models"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// racingTaskRepo runs interleave exactly once, right before a locked task
// mutation reaches the store, standing in for a competing request that
// commits first.
type racingTaskRepo struct {
	repository.UserTaskRepository
	interleave func()
	once       sync.Once
}

func (r *racingTaskRepo) MutateLocked(id uint64, fn func(task *models.UserTask) error) (*models.UserTask, error) {
	r.once.Do(r.interleave)
	return r.UserTaskRepository.MutateLocked(id, fn)
}

// UserTaskServiceTestSuite defines the test suite for UserTaskService
type UserTaskServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *UserTaskService
	ctx     context.Context
}

// SetupTest runs before each test
func (suite *UserTaskServiceTestSuite) SetupTest() {
	var err error
	suite.db, err = openTestDB()
	suite.Require().NoError(err)

	userRepo := repository.NewUserRepository(suite.db)
	taskRepo := repository.NewUserTaskRepository(suite.db)
	suite.service = NewUserTaskService(taskRepo, userRepo, nil)
	suite.ctx = context.Background()
}

func (suite *UserTaskServiceTestSuite) actorFor(user *models.User) authz.Actor {
	return authz.Actor{ID: user.ID, IsStaff: user.IsStaff}
}

func (suite *UserTaskServiceTestSuite) TestCreateAndGet() {
	user := createUser(suite.db, "alice@example.com", false)
	due := time.Now().Add(24 * time.Hour)

	task, err := suite.service.Create(suite.ctx, suite.actorFor(user), CreateUserTaskInput{
		Description: "buy milk",
		DueDate:     &due,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.TaskStatusIssued, task.Status)
	assert.Equal(suite.T(), user.ID, task.UserID)

	got, err := suite.service.Get(suite.actorFor(user), task.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), task.ID, got.ID)
}

func (suite *UserTaskServiceTestSuite) TestCreateValidation() {
	user := createUser(suite.db, "alice@example.com", false)

	_, err := suite.service.Create(suite.ctx, suite.actorFor(user), CreateUserTaskInput{
		Description: "   ",
	})
	var validationErr *ValidationError
	assert.ErrorAs(suite.T(), err, &validationErr)

	past := time.Now().Add(-time.Hour)
	_, err = suite.service.Create(suite.ctx, suite.actorFor(user), CreateUserTaskInput{
		Description: "late",
		DueDate:     &past,
	})
	validationErr = nil
	assert.ErrorAs(suite.T(), err, &validationErr)
	assert.Equal(suite.T(), "due_date", validationErr.Field)
}

func (suite *UserTaskServiceTestSuite) TestGetHidesOtherUsersTasks() {
	alice := createUser(suite.db, "alice@example.com", false)
	bob := createUser(suite.db, "bob@example.com", false)
	task := createUserTask(suite.db, alice.ID, models.TaskStatusIssued, nil)

	_, err := suite.service.Get(suite.actorFor(bob), task.ID)
	assert.ErrorIs(suite.T(), err, ErrNotFound)

	// staff can read anyone's task
	staff := createUser(suite.db, "staff@example.com", true)
	got, err := suite.service.Get(suite.actorFor(staff), task.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), task.ID, got.ID)
}

func (suite *UserTaskServiceTestSuite) TestListStatusPartitions() {
	user := createUser(suite.db, "alice@example.com", false)
	createUserTask(suite.db, user.ID, models.TaskStatusIssued, nil)
	createUserTask(suite.db, user.ID, models.TaskStatusIssued, timePtr(time.Now().Add(-time.Hour)))
	createUserTask(suite.db, user.ID, models.TaskStatusClosed, timePtr(time.Now().Add(-time.Hour)))

	actor := suite.actorFor(user)

	tasks, total, err := suite.service.List(suite.ctx, actor, ListUserTasksInput{Status: "issued"})
	suite.Require().NoError(err)
	assert.EqualValues(suite.T(), 1, total)
	assert.Len(suite.T(), tasks, 1)

	_, total, err = suite.service.List(suite.ctx, actor, ListUserTasksInput{Status: "expired"})
	suite.Require().NoError(err)
	assert.EqualValues(suite.T(), 1, total)

	_, total, err = suite.service.List(suite.ctx, actor, ListUserTasksInput{Status: "closed"})
	suite.Require().NoError(err)
	assert.EqualValues(suite.T(), 1, total)

	_, total, err = suite.service.List(suite.ctx, actor, ListUserTasksInput{})
	suite.Require().NoError(err)
	assert.EqualValues(suite.T(), 3, total)

	_, _, err = suite.service.List(suite.ctx, actor, ListUserTasksInput{Status: "bogus"})
	var validationErr *ValidationError
	assert.ErrorAs(suite.T(), err, &validationErr)
}

func (suite *UserTaskServiceTestSuite) TestListForOtherUserRequiresStaff() {
	alice := createUser(suite.db, "alice@example.com", false)
	bob := createUser(suite.db, "bob@example.com", false)
	createUserTask(suite.db, alice.ID, models.TaskStatusIssued, nil)

	_, _, err := suite.service.List(suite.ctx, suite.actorFor(bob), ListUserTasksInput{TargetUserID: alice.ID})
	assert.ErrorIs(suite.T(), err, ErrPermissionDenied)

	staff := createUser(suite.db, "staff@example.com", true)
	_, total, err := suite.service.List(suite.ctx, suite.actorFor(staff), ListUserTasksInput{TargetUserID: alice.ID})
	suite.Require().NoError(err)
	assert.EqualValues(suite.T(), 1, total)
}

func (suite *UserTaskServiceTestSuite) TestUpdateGuards() {
	user := createUser(suite.db, "alice@example.com", false)
	actor := suite.actorFor(user)
	description := "changed"

	// expired task rejects updates
	expired := createUserTask(suite.db, user.ID, models.TaskStatusIssued, timePtr(time.Now().Add(-time.Hour)))
	_, err := suite.service.Update(suite.ctx, actor, expired.ID, TaskChanges{Description: &description})
	var statusErr *TaskStatusError
	assert.ErrorAs(suite.T(), err, &statusErr)
	assert.Equal(suite.T(), TaskStatusExpired, statusErr.Status)

	// closed task rejects updates
	closed := createUserTask(suite.db, user.ID, models.TaskStatusClosed, nil)
	_, err = suite.service.Update(suite.ctx, actor, closed.ID, TaskChanges{Description: &description})
	statusErr = nil
	assert.ErrorAs(suite.T(), err, &statusErr)
	assert.Equal(suite.T(), TaskStatusClosed, statusErr.Status)

	// status cannot be set through a generic update
	open := createUserTask(suite.db, user.ID, models.TaskStatusIssued, nil)
	closedStatus := models.TaskStatusClosed
	_, err = suite.service.Update(suite.ctx, actor, open.ID, TaskChanges{Status: &closedStatus})
	var taskErr *TaskError
	assert.ErrorAs(suite.T(), err, &taskErr)

	// a valid update sticks
	updated, err := suite.service.Update(suite.ctx, actor, open.ID, TaskChanges{Description: &description})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "changed", updated.Description)
}

func (suite *UserTaskServiceTestSuite) TestCloseAndReissue() {
	user := createUser(suite.db, "alice@example.com", false)
	actor := suite.actorFor(user)

	task := createUserTask(suite.db, user.ID, models.TaskStatusIssued, nil)
	closed, err := suite.service.Close(suite.ctx, actor, task.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.TaskStatusClosed, closed.Status)

	_, err = suite.service.Close(suite.ctx, actor, task.ID)
	var statusErr *TaskStatusError
	assert.ErrorAs(suite.T(), err, &statusErr)

	due := time.Now().Add(time.Hour)
	reissued, err := suite.service.Reissue(suite.ctx, actor, task.ID, &due)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.TaskStatusIssued, reissued.Status)

	// an active task cannot be reissued again
	_, err = suite.service.Reissue(suite.ctx, actor, task.ID, nil)
	statusErr = nil
	assert.ErrorAs(suite.T(), err, &statusErr)
	assert.Equal(suite.T(), TaskStatusActive, statusErr.Status)
}

func (suite *UserTaskServiceTestSuite) TestReissueExpiredTask() {
	user := createUser(suite.db, "alice@example.com", false)
	actor := suite.actorFor(user)

	task := createUserTask(suite.db, user.ID, models.TaskStatusIssued, timePtr(time.Now().Add(-time.Hour)))
	reissued, err := suite.service.Reissue(suite.ctx, actor, task.ID, nil)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.TaskStatusIssued, reissued.Status)
	assert.Nil(suite.T(), reissued.DueDate)
}

func (suite *UserTaskServiceTestSuite) TestDelete() {
	user := createUser(suite.db, "alice@example.com", false)
	actor := suite.actorFor(user)

	task := createUserTask(suite.db, user.ID, models.TaskStatusIssued, nil)
	suite.Require().NoError(suite.service.Delete(suite.ctx, actor, task.ID))

	_, err := suite.service.Get(actor, task.ID)
	assert.ErrorIs(suite.T(), err, ErrNotFound)

	// expired tasks are not deletable
	expired := createUserTask(suite.db, user.ID, models.TaskStatusIssued, timePtr(time.Now().Add(-time.Hour)))
	err = suite.service.Delete(suite.ctx, actor, expired.ID)
	var statusErr *TaskStatusError
	assert.ErrorAs(suite.T(), err, &statusErr)
	assert.Equal(suite.T(), TaskStatusExpired, statusErr.Status)

	// another user cannot delete
	bob := createUser(suite.db, "bob@example.com", false)
	other := createUserTask(suite.db, user.ID, models.TaskStatusIssued, nil)
	err = suite.service.Delete(suite.ctx, suite.actorFor(bob), other.ID)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *UserTaskServiceTestSuite) TestConcurrentCloseSucceedsExactlyOnce() {
	user := createUser(suite.db, "alice@example.com", false)
	actor := suite.actorFor(user)
	task := createUserTask(suite.db, user.ID, models.TaskStatusIssued, nil)

	racing := &racingTaskRepo{
		UserTaskRepository: repository.NewUserTaskRepository(suite.db),
		interleave: func() {
			closed, err := suite.service.Close(suite.ctx, actor, task.ID)
			suite.Require().NoError(err)
			assert.Equal(suite.T(), models.TaskStatusClosed, closed.Status)
		},
	}
	service := NewUserTaskService(racing, repository.NewUserRepository(suite.db), nil)

	// the competing close committed first, so this one finds the task done
	_, err := service.Close(suite.ctx, actor, task.ID)
	var statusErr *TaskStatusError
	suite.Require().ErrorAs(err, &statusErr)
	assert.Equal(suite.T(), TaskStatusClosed, statusErr.Status)

	var got models.UserTask
	suite.Require().NoError(suite.db.First(&got, task.ID).Error)
	assert.Equal(suite.T(), models.TaskStatusClosed, got.Status)
}

func TestUserTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserTaskServiceTestSuite))
}
