package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/authz"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/constants"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/dto"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/models"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/repository"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// UserTaskHandlerTestSuite defines the test suite for UserTaskHandler
type UserTaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *UserTaskHandler
}

// SetupTest runs before each test
func (suite *UserTaskHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.UserTask{},
		&models.Group{},
		&models.Member{},
		&models.GroupTask{},
		&models.MemberTaskRelation{},
	)
	suite.Require().NoError(err)

	taskRepo := repository.NewUserTaskRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)
	taskService := services.NewUserTaskService(taskRepo, userRepo, nil)
	suite.handler = NewUserTaskHandler(taskService)

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *UserTaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *UserTaskHandlerTestSuite) createTestUser(email string, staff bool) *models.User {
	user := &models.User{
		Email:        email,
		Nickname:     email,
		PasswordHash: "hashedpassword",
		IsStaff:      staff,
		IsActive:     true,
	}
	suite.db.Create(user)
	return user
}

func (suite *UserTaskHandlerTestSuite) createTestTask(userID uint64, status models.TaskStatus, dueDate *time.Time) *models.UserTask {
	task := &models.UserTask{
		Task: models.Task{
			Description: "Test Task",
			Status:      status,
			DueDate:     dueDate,
		},
		UserID: userID,
	}
	suite.db.Create(task)
	return task
}

// Helper function to create authenticated context (simulates RequireAuth middleware)
func (suite *UserTaskHandlerTestSuite) createAuthContext(method, url string, body []byte, user *models.User) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, user.ID)
	c.Set(constants.ContextKeyActor, authz.Actor{ID: user.ID, IsStaff: user.IsStaff})

	return c, w
}

func (suite *UserTaskHandlerTestSuite) setIDParam(c *gin.Context, id uint64) {
	c.Params = gin.Params{{Key: "id", Value: strconv.FormatUint(id, 10)}}
}

func (suite *UserTaskHandlerTestSuite) TestListTasks_Success() {
	user := suite.createTestUser("test@example.com", false)
	suite.createTestTask(user.ID, models.TaskStatusIssued, nil)
	suite.createTestTask(user.ID, models.TaskStatusClosed, nil)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, user)

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.UserTaskListResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), response.Tasks, 2)
	assert.Equal(suite.T(), int64(2), response.TotalCount)
	assert.Equal(suite.T(), 1, response.Page)
}

func (suite *UserTaskHandlerTestSuite) TestListTasks_StatusFilter() {
	user := suite.createTestUser("test@example.com", false)
	suite.createTestTask(user.ID, models.TaskStatusIssued, nil)
	suite.createTestTask(user.ID, models.TaskStatusClosed, nil)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, user)
	c.Request.URL.RawQuery = "status=closed"

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.UserTaskListResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), response.Tasks, 1)
	assert.Equal(suite.T(), models.TaskStatusClosed, response.Tasks[0].Status)
}

func (suite *UserTaskHandlerTestSuite) TestListTasks_InvalidStatus() {
	user := suite.createTestUser("test@example.com", false)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, user)
	c.Request.URL.RawQuery = "status=bogus"

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *UserTaskHandlerTestSuite) TestListTasks_Unauthorized() {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/tasks", nil)

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *UserTaskHandlerTestSuite) TestCreateTask_Success() {
	user := suite.createTestUser("test@example.com", false)

	dueDate := time.Now().Add(48 * time.Hour).UTC()
	body, _ := json.Marshal(map[string]interface{}{
		"description": "New Task",
		"due_date":    dueDate.Format(time.RFC3339),
	})

	c, w := suite.createAuthContext("POST", "/api/tasks", body, user)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response dto.UserTaskDTO
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "New Task", response.Description)
	assert.Equal(suite.T(), models.TaskStatusIssued, response.Status)
	assert.Equal(suite.T(), user.ID, response.UserID)
	assert.False(suite.T(), response.IsExpired)
}

func (suite *UserTaskHandlerTestSuite) TestCreateTask_PastDueDate() {
	user := suite.createTestUser("test@example.com", false)

	dueDate := time.Now().Add(-time.Hour).UTC()
	body, _ := json.Marshal(map[string]interface{}{
		"description": "New Task",
		"due_date":    dueDate.Format(time.RFC3339),
	})

	c, w := suite.createAuthContext("POST", "/api/tasks", body, user)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *UserTaskHandlerTestSuite) TestCreateTask_MissingDescription() {
	user := suite.createTestUser("test@example.com", false)

	body, _ := json.Marshal(map[string]interface{}{})

	c, w := suite.createAuthContext("POST", "/api/tasks", body, user)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *UserTaskHandlerTestSuite) TestGetTask_Success() {
	user := suite.createTestUser("test@example.com", false)
	task := suite.createTestTask(user.ID, models.TaskStatusIssued, nil)

	c, w := suite.createAuthContext("GET", "/api/tasks/1", nil, user)
	suite.setIDParam(c, task.ID)

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.UserTaskDTO
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), task.ID, response.ID)
}

func (suite *UserTaskHandlerTestSuite) TestGetTask_OtherUser() {
	owner := suite.createTestUser("owner@example.com", false)
	other := suite.createTestUser("other@example.com", false)
	task := suite.createTestTask(owner.ID, models.TaskStatusIssued, nil)

	c, w := suite.createAuthContext("GET", "/api/tasks/1", nil, other)
	suite.setIDParam(c, task.ID)

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *UserTaskHandlerTestSuite) TestUpdateTask_Success() {
	user := suite.createTestUser("test@example.com", false)
	task := suite.createTestTask(user.ID, models.TaskStatusIssued, nil)

	body, _ := json.Marshal(map[string]interface{}{
		"description": "Updated Description",
	})

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", body, user)
	suite.setIDParam(c, task.ID)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.UserTaskDTO
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Updated Description", response.Description)
}

func (suite *UserTaskHandlerTestSuite) TestUpdateTask_NullDueDate() {
	user := suite.createTestUser("test@example.com", false)
	dueDate := time.Now().Add(24 * time.Hour)
	task := suite.createTestTask(user.ID, models.TaskStatusIssued, &dueDate)

	body, _ := json.Marshal(map[string]interface{}{
		"due_date": nil,
	})

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", body, user)
	suite.setIDParam(c, task.ID)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.UserTaskDTO
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), response.DueDate)
}

func (suite *UserTaskHandlerTestSuite) TestUpdateTask_StatusChangeRejected() {
	user := suite.createTestUser("test@example.com", false)
	task := suite.createTestTask(user.ID, models.TaskStatusIssued, nil)

	body, _ := json.Marshal(map[string]interface{}{
		"status": "closed",
	})

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", body, user)
	suite.setIDParam(c, task.ID)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
}

func (suite *UserTaskHandlerTestSuite) TestUpdateTask_ClosedTask() {
	user := suite.createTestUser("test@example.com", false)
	task := suite.createTestTask(user.ID, models.TaskStatusClosed, nil)

	body, _ := json.Marshal(map[string]interface{}{
		"description": "Updated Description",
	})

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", body, user)
	suite.setIDParam(c, task.ID)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
}

func (suite *UserTaskHandlerTestSuite) TestCloseTask_Success() {
	user := suite.createTestUser("test@example.com", false)
	task := suite.createTestTask(user.ID, models.TaskStatusIssued, nil)

	c, w := suite.createAuthContext("POST", "/api/tasks/1/close", nil, user)
	suite.setIDParam(c, task.ID)

	suite.handler.CloseTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.UserTaskDTO
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.TaskStatusClosed, response.Status)
}

func (suite *UserTaskHandlerTestSuite) TestCloseTask_AlreadyClosed() {
	user := suite.createTestUser("test@example.com", false)
	task := suite.createTestTask(user.ID, models.TaskStatusClosed, nil)

	c, w := suite.createAuthContext("POST", "/api/tasks/1/close", nil, user)
	suite.setIDParam(c, task.ID)

	suite.handler.CloseTask(c)

	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
}

func (suite *UserTaskHandlerTestSuite) TestReissueTask_EmptyBody() {
	user := suite.createTestUser("test@example.com", false)
	task := suite.createTestTask(user.ID, models.TaskStatusClosed, nil)

	c, w := suite.createAuthContext("POST", "/api/tasks/1/reissue", nil, user)
	suite.setIDParam(c, task.ID)

	suite.handler.ReissueTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.UserTaskDTO
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.TaskStatusIssued, response.Status)
	assert.Nil(suite.T(), response.DueDate)
}

func (suite *UserTaskHandlerTestSuite) TestReissueTask_ActiveTask() {
	user := suite.createTestUser("test@example.com", false)
	task := suite.createTestTask(user.ID, models.TaskStatusIssued, nil)

	c, w := suite.createAuthContext("POST", "/api/tasks/1/reissue", nil, user)
	suite.setIDParam(c, task.ID)

	suite.handler.ReissueTask(c)

	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
}

func (suite *UserTaskHandlerTestSuite) TestDeleteTask_Success() {
	user := suite.createTestUser("test@example.com", false)
	task := suite.createTestTask(user.ID, models.TaskStatusIssued, nil)

	c, w := suite.createAuthContext("DELETE", "/api/tasks/1", nil, user)
	suite.setIDParam(c, task.ID)

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var deleted models.UserTask
	err := suite.db.First(&deleted, task.ID).Error
	assert.Error(suite.T(), err)
}

func (suite *UserTaskHandlerTestSuite) TestDeleteTask_Expired() {
	user := suite.createTestUser("test@example.com", false)
	dueDate := time.Now().Add(-time.Hour)
	task := suite.createTestTask(user.ID, models.TaskStatusIssued, &dueDate)

	c, w := suite.createAuthContext("DELETE", "/api/tasks/1", nil, user)
	suite.setIDParam(c, task.ID)

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
}

func (suite *UserTaskHandlerTestSuite) TestStaffCanManageOtherUsersTasks() {
	staff := suite.createTestUser("staff@example.com", true)
	user := suite.createTestUser("user@example.com", false)
	suite.createTestTask(user.ID, models.TaskStatusIssued, nil)

	c, w := suite.createAuthContext("GET", "/api/staff/users/1/tasks", nil, staff)
	suite.setIDParam(c, user.ID)

	suite.handler.ListTasksForUser(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.UserTaskListResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), response.Tasks, 1)
}

// TestSuite runs the test suite
func TestUserTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(UserTaskHandlerTestSuite))
}
