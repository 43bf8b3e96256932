package repository

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/yukikurage/team-task-board/internal/models"
	"github.com/yukikurage/team-task-board/internal/testutil"
)

type RepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	users UserRepository
	teams TeamRepository
	tasks TaskRepository
	tags  TagRepository

	alice *models.User
	bob   *models.User
}

func (s *RepositoryTestSuite) SetupTest() {
	s.db = testutil.NewDB(s.T())
	s.users = NewUserRepository(s.db)
	s.teams = NewTeamRepository(s.db)
	s.tasks = NewTaskRepository(s.db)
	s.tags = NewTagRepository(s.db)

	s.alice = testutil.CreateUser(s.T(), s.db, "alice", "alice@x.com")
	s.bob = testutil.CreateUser(s.T(), s.db, "bob", "bob@x.com")
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func (s *RepositoryTestSuite) tagNames(task *models.Task) []string {
	names := make([]string, len(task.Tags))
	for i, tt := range task.Tags {
		names[i] = tt.Tag.Name
	}
	return names
}

func (s *RepositoryTestSuite) TestUser_UniqueColumns() {
	err := s.users.Create(&models.User{Username: "alice", Email: "other@x.com"})
	s.ErrorIs(err, gorm.ErrDuplicatedKey)

	err = s.users.Create(&models.User{Username: "alice2", Email: "alice@x.com"})
	s.ErrorIs(err, gorm.ErrDuplicatedKey)

	err = s.users.Create(&models.User{Username: "carol", Email: "carol@x.com", UID: s.alice.UID})
	s.ErrorIs(err, gorm.ErrDuplicatedKey)
}

func (s *RepositoryTestSuite) TestUser_Finders() {
	byUID, err := s.users.FindByUID(s.alice.UID)
	s.Require().NoError(err)
	s.Equal(s.alice.UserID, byUID.UserID)

	byName, err := s.users.FindByUsername("bob")
	s.Require().NoError(err)
	s.Equal(s.bob.UserID, byName.UserID)

	byEmail, err := s.users.FindByEmail("bob@x.com")
	s.Require().NoError(err)
	s.Equal(s.bob.UserID, byEmail.UserID)

	_, err = s.users.FindByUID("missing")
	s.ErrorIs(err, gorm.ErrRecordNotFound)

	count, err := s.users.CountByIDs([]uint64{s.alice.UserID, s.bob.UserID, 999})
	s.Require().NoError(err)
	s.Equal(int64(2), count)
}

func (s *RepositoryTestSuite) TestUser_DeleteRestrictedByCreatedTasks() {
	task := &models.Task{Title: "t", Status: models.TaskStatusTodo, CreatedBy: s.alice.UserID}
	s.Require().NoError(s.tasks.Create(task, nil, nil))

	s.ErrorIs(s.users.Delete(s.alice.UserID), ErrHasTasks)

	_, err := s.users.FindByID(s.alice.UserID)
	s.NoError(err)
}

func (s *RepositoryTestSuite) TestUser_DeleteRemovesDependents() {
	team := testutil.CreateTeam(s.T(), s.db, "core", s.alice, s.bob)
	task := &models.Task{Title: "t", Status: models.TaskStatusTodo, CreatedBy: s.alice.UserID, TeamID: &team.TeamID}
	s.Require().NoError(s.tasks.Create(task, []uint64{s.bob.UserID}, nil))
	s.Require().NoError(s.tags.Create(&models.Tag{Name: "mine", UserID: &s.bob.UserID}))

	s.Require().NoError(s.users.Delete(s.bob.UserID))

	var memberships, assignments, tags int64
	s.db.Model(&models.TeamMember{}).Where("user_id = ?", s.bob.UserID).Count(&memberships)
	s.db.Model(&models.TaskAssignee{}).Where("user_id = ?", s.bob.UserID).Count(&assignments)
	s.db.Model(&models.Tag{}).Where("user_id = ?", s.bob.UserID).Count(&tags)
	s.Zero(memberships)
	s.Zero(assignments)
	s.Zero(tags)

	s.ErrorIs(s.users.Delete(s.bob.UserID), gorm.ErrRecordNotFound)
}

func (s *RepositoryTestSuite) TestTeam_CreateWithMembers() {
	team := &models.Team{TeamName: "core"}
	s.Require().NoError(s.teams.Create(team, []uint64{s.alice.UserID, s.bob.UserID}))

	members, err := s.teams.ListMembers(team.TeamID)
	s.Require().NoError(err)
	s.Len(members, 2)
	s.Equal("alice", members[0].Username)

	teams, err := s.teams.ListByUserID(s.bob.UserID)
	s.Require().NoError(err)
	s.Require().Len(teams, 1)
	s.Equal("core", teams[0].TeamName)

	count, err := s.teams.CountMembers(team.TeamID, []uint64{s.alice.UserID, 999})
	s.Require().NoError(err)
	s.Equal(int64(1), count)
}

func (s *RepositoryTestSuite) TestTeam_CreateRollsBackOnUnknownMember() {
	team := &models.Team{TeamName: "ghosts"}
	err := s.teams.Create(team, []uint64{s.alice.UserID, 999})
	s.ErrorIs(err, gorm.ErrForeignKeyViolated)

	var count int64
	s.db.Model(&models.Team{}).Where("team_name = ?", "ghosts").Count(&count)
	s.Zero(count)
}

func (s *RepositoryTestSuite) TestTeam_Membership() {
	team := testutil.CreateTeam(s.T(), s.db, "core")

	s.Require().NoError(s.teams.AddMember(&models.TeamMember{TeamID: team.TeamID, UserID: s.alice.UserID}))
	s.ErrorIs(s.teams.AddMember(&models.TeamMember{TeamID: team.TeamID, UserID: s.alice.UserID}), gorm.ErrDuplicatedKey)

	_, err := s.teams.FindMember(team.TeamID, s.alice.UserID)
	s.NoError(err)

	s.Require().NoError(s.teams.RemoveMember(team.TeamID, s.alice.UserID))
	s.ErrorIs(s.teams.RemoveMember(team.TeamID, s.alice.UserID), gorm.ErrRecordNotFound)
}

func (s *RepositoryTestSuite) TestTeam_DeletePolicy() {
	team := testutil.CreateTeam(s.T(), s.db, "core", s.alice)
	task := &models.Task{Title: "t", Status: models.TaskStatusTodo, CreatedBy: s.alice.UserID, TeamID: &team.TeamID}
	s.Require().NoError(s.tasks.Create(task, nil, []string{"ops"}))

	s.ErrorIs(s.teams.Delete(team.TeamID), ErrHasTasks)

	s.Require().NoError(s.tasks.Delete(task.TaskID))
	s.Require().NoError(s.teams.Delete(team.TeamID))

	var tags, members int64
	s.db.Model(&models.Tag{}).Where("team_id = ?", team.TeamID).Count(&tags)
	s.db.Model(&models.TeamMember{}).Where("team_id = ?", team.TeamID).Count(&members)
	s.Zero(tags)
	s.Zero(members)
}

func (s *RepositoryTestSuite) TestTask_CreateWithAssigneesAndTags() {
	team := testutil.CreateTeam(s.T(), s.db, "core", s.alice, s.bob)
	task := &models.Task{Title: "ship", Status: models.TaskStatusTodo, CreatedBy: s.alice.UserID, TeamID: &team.TeamID}
	s.Require().NoError(s.tasks.Create(task, []uint64{s.alice.UserID, s.bob.UserID}, []string{"release", "ops"}))

	found, err := s.tasks.FindByID(task.TaskID)
	s.Require().NoError(err)
	s.Equal("alice", found.Creator.Username)
	s.Require().NotNil(found.Team)
	s.Equal("core", found.Team.TeamName)
	s.Require().Len(found.Assignees, 2)
	s.Equal("alice", found.Assignees[0].User.Username)
	s.Equal("bob", found.Assignees[1].User.Username)
	s.Equal([]string{"release", "ops"}, s.tagNames(found))

	tag, err := s.tags.FindByName("ops", nil, &team.TeamID)
	s.Require().NoError(err)
	s.Nil(tag.UserID)
}

func (s *RepositoryTestSuite) TestTask_UpdateReplacesTagsWithoutDeletingThem() {
	task := &models.Task{Title: "t", Status: models.TaskStatusTodo, CreatedBy: s.alice.UserID}
	s.Require().NoError(s.tasks.Create(task, nil, []string{"a", "b"}))

	names := []string{"b", "c"}
	task.Status = models.TaskStatusDone
	s.Require().NoError(s.tasks.Update(task, TaskAssociations{TagNames: &names}))

	found, err := s.tasks.FindByID(task.TaskID)
	s.Require().NoError(err)
	s.Equal(models.TaskStatusDone, found.Status)
	s.ElementsMatch([]string{"b", "c"}, s.tagNames(found))

	orphan, err := s.tags.FindByName("a", &s.alice.UserID, nil)
	s.Require().NoError(err)
	s.Equal("a", orphan.Name)

	// nil leaves tags alone, empty clears them
	s.Require().NoError(s.tasks.Update(found, TaskAssociations{}))
	found, _ = s.tasks.FindByID(task.TaskID)
	s.Len(found.Tags, 2)

	empty := []string{}
	s.Require().NoError(s.tasks.Update(found, TaskAssociations{TagNames: &empty}))
	found, _ = s.tasks.FindByID(task.TaskID)
	s.Empty(found.Tags)

	var total int64
	s.db.Model(&models.Tag{}).Count(&total)
	s.Equal(int64(3), total)
}

func (s *RepositoryTestSuite) TestTask_UpdateReplacesAssignees() {
	task := &models.Task{Title: "t", Status: models.TaskStatusTodo, CreatedBy: s.alice.UserID}
	s.Require().NoError(s.tasks.Create(task, []uint64{s.alice.UserID}, nil))

	ids := []uint64{s.bob.UserID}
	s.Require().NoError(s.tasks.Update(task, TaskAssociations{AssigneeIDs: &ids}))

	found, err := s.tasks.FindByID(task.TaskID)
	s.Require().NoError(err)
	s.Require().Len(found.Assignees, 1)
	s.Equal(s.bob.UserID, found.Assignees[0].UserID)
}

func (s *RepositoryTestSuite) TestTask_ListFilters() {
	team := testutil.CreateTeam(s.T(), s.db, "core", s.alice, s.bob)
	personal := &models.Task{Title: "personal", Status: models.TaskStatusTodo, CreatedBy: s.alice.UserID}
	teamTask := &models.Task{Title: "team", Status: models.TaskStatusDone, CreatedBy: s.bob.UserID, TeamID: &team.TeamID}
	s.Require().NoError(s.tasks.Create(personal, nil, nil))
	s.Require().NoError(s.tasks.Create(teamTask, []uint64{s.alice.UserID}, nil))

	titles := func(filter TaskFilter) []string {
		tasks, err := s.tasks.List(filter)
		s.Require().NoError(err)
		out := make([]string, len(tasks))
		for i, t := range tasks {
			out[i] = t.Title
		}
		return out
	}

	done := models.TaskStatusDone
	s.ElementsMatch([]string{"personal", "team"}, titles(TaskFilter{}))
	s.Equal([]string{"team"}, titles(TaskFilter{Status: &done}))
	s.Equal([]string{"personal"}, titles(TaskFilter{PersonalOwnerID: &s.alice.UserID}))
	s.ElementsMatch([]string{"personal", "team"}, titles(TaskFilter{InvolvedUserID: &s.alice.UserID}))
	s.Equal([]string{"team"}, titles(TaskFilter{TeamID: &team.TeamID}))
	s.Empty(titles(TaskFilter{PersonalOwnerID: &s.bob.UserID}))
}

func (s *RepositoryTestSuite) TestTask_DeleteKeepsTags() {
	task := &models.Task{Title: "t", Status: models.TaskStatusTodo, CreatedBy: s.alice.UserID}
	s.Require().NoError(s.tasks.Create(task, []uint64{s.bob.UserID}, []string{"keep"}))

	s.Require().NoError(s.tasks.Delete(task.TaskID))
	_, err := s.tasks.FindByID(task.TaskID)
	s.ErrorIs(err, gorm.ErrRecordNotFound)

	_, err = s.tags.FindByName("keep", &s.alice.UserID, nil)
	s.NoError(err)

	var links int64
	s.db.Model(&models.TaskAssignee{}).Where("task_id = ?", task.TaskID).Count(&links)
	s.Zero(links)

	s.ErrorIs(s.tasks.Delete(task.TaskID), gorm.ErrRecordNotFound)
}

func (s *RepositoryTestSuite) TestTag_ScopeUniqueness() {
	team := testutil.CreateTeam(s.T(), s.db, "core")

	s.Require().NoError(s.tags.Create(&models.Tag{Name: "bug", TeamID: &team.TeamID}))
	s.Require().NoError(s.tags.Create(&models.Tag{Name: "bug", UserID: &s.alice.UserID}))
	s.Require().NoError(s.tags.Create(&models.Tag{Name: "bug", UserID: &s.bob.UserID}))

	s.ErrorIs(s.tags.Create(&models.Tag{Name: "bug", TeamID: &team.TeamID}), gorm.ErrDuplicatedKey)
	s.ErrorIs(s.tags.Create(&models.Tag{Name: "bug", UserID: &s.alice.UserID}), gorm.ErrDuplicatedKey)

	byTeam, err := s.tags.List(TagFilter{TeamID: &team.TeamID})
	s.Require().NoError(err)
	s.Len(byTeam, 1)

	all, err := s.tags.List(TagFilter{})
	s.Require().NoError(err)
	s.Len(all, 3)
}

func (s *RepositoryTestSuite) TestTag_DeleteDetachesFromTasks() {
	task := &models.Task{Title: "t", Status: models.TaskStatusTodo, CreatedBy: s.alice.UserID}
	s.Require().NoError(s.tasks.Create(task, nil, []string{"gone", "stays"}))

	tag, err := s.tags.FindByName("gone", &s.alice.UserID, nil)
	s.Require().NoError(err)
	s.Require().NoError(s.tags.Delete(tag.TagID))

	found, err := s.tasks.FindByID(task.TaskID)
	s.Require().NoError(err)
	s.Equal([]string{"stays"}, s.tagNames(found))

	s.ErrorIs(s.tags.Delete(tag.TagID), gorm.ErrRecordNotFound)
}

func TestTagScopeOf(t *testing.T) {
	teamID := uint64(4)
	userID, scopeTeam := TagScopeOf(&models.Task{CreatedBy: 9, TeamID: &teamID})
	if userID != nil || scopeTeam == nil || *scopeTeam != 4 {
		t.Fatalf("team task scope = (%v, %v)", userID, scopeTeam)
	}

	userID, scopeTeam = TagScopeOf(&models.Task{CreatedBy: 9})
	if scopeTeam != nil || userID == nil || *userID != 9 {
		t.Fatalf("personal task scope = (%v, %v)", userID, scopeTeam)
	}
}
