package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/team-task-board/internal/dto"
	"github.com/yukikurage/team-task-board/internal/models"
	"github.com/yukikurage/team-task-board/internal/utils"
)

// --- login, registration, logout ---

func (s *Server) loginPage(c *gin.Context) {
	ws := loadWebSession(c)
	if ws.Authenticated() {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	s.render(c, ws, http.StatusOK, "login.html", gin.H{"Title": "Login"})
}

func (s *Server) login(c *gin.Context) {
	ws := loadWebSession(c)
	uid := strings.TrimSpace(c.PostForm("uid"))
	if uid == "" {
		s.render(c, ws, http.StatusBadRequest, "login.html", gin.H{
			"Title": "Login",
			"Error": "Please enter your User ID.",
		})
		return
	}

	user, err := s.api.Login(c.Request.Context(), uid)
	if err != nil {
		s.render(c, ws, http.StatusUnauthorized, "login.html", gin.H{
			"Title": "Login",
			"Error": "Authentication failed. Please check your User ID.",
			"UID":   uid,
		})
		return
	}

	// queued before login so one Save carries both
	ws.store.AddFlash(fmt.Sprintf("Welcome, %s!", user.Username))
	if err := ws.login(user); err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "failed to save session")
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) registerPage(c *gin.Context) {
	ws := loadWebSession(c)
	s.render(c, ws, http.StatusOK, "register.html", gin.H{"Title": "Register"})
}

func (s *Server) register(c *gin.Context) {
	ws := loadWebSession(c)
	req := dto.RegisterRequest{
		Username: strings.TrimSpace(c.PostForm("username")),
		Email:    strings.TrimSpace(c.PostForm("email")),
	}

	user, err := s.api.Register(c.Request.Context(), req)
	if err != nil {
		s.render(c, ws, http.StatusBadRequest, "register.html", gin.H{
			"Title":    "Register",
			"Error":    s.apiMessage(c, err),
			"Username": req.Username,
			"Email":    req.Email,
		})
		return
	}

	s.render(c, ws, http.StatusCreated, "register.html", gin.H{
		"Title":      "Register",
		"Registered": user,
	})
}

func (s *Server) logout(c *gin.Context) {
	ws := loadWebSession(c)
	if err := ws.logout(); err != nil {
		_ = c.Error(err)
	}
	c.Redirect(http.StatusSeeOther, "/login")
}

// --- home and boards ---

func (s *Server) home(c *gin.Context, ws *webSession) {
	s.render(c, ws, http.StatusOK, "home.html", gin.H{"Title": "Home"})
}

func (s *Server) personalBoard(c *gin.Context, ws *webSession) {
	tasks, err := s.api.ListUserTasks(c.Request.Context(), ws.User.UID, true)
	data := gin.H{"Title": "My Board", "ReturnTo": "/board"}
	if err != nil {
		data["Error"] = s.apiMessage(c, err)
	}
	data["Columns"] = groupByStatus(tasks)
	s.render(c, ws, http.StatusOK, "board.html", data)
}

func (s *Server) teamBoard(c *gin.Context, ws *webSession) {
	ctx := c.Request.Context()
	data := gin.H{"Title": "Team Board"}

	teams, err := s.api.ListUserTeams(ctx, ws.User.UID)
	if err != nil {
		data["Error"] = s.apiMessage(c, err)
		s.render(c, ws, http.StatusOK, "team_board.html", data)
		return
	}
	data["Teams"] = teams
	if len(teams) == 0 {
		s.render(c, ws, http.StatusOK, "team_board.html", data)
		return
	}

	selected := teams[0]
	if raw := c.Query("team_id"); raw != "" {
		id, err := utils.ParseID(raw)
		if err != nil || !containsTeam(teams, id) {
			c.Redirect(http.StatusSeeOther, "/team-board")
			return
		}
		for _, t := range teams {
			if t.TeamID == id {
				selected = t
			}
		}
	}
	data["Selected"] = selected
	data["ReturnTo"] = fmt.Sprintf("/team-board?team_id=%d", selected.TeamID)

	tasks, err := s.api.ListTeamTasks(ctx, selected.TeamID)
	if err != nil {
		data["Error"] = s.apiMessage(c, err)
	}
	data["Columns"] = groupByStatus(tasks)

	members, err := s.api.ListTeamMembers(ctx, selected.TeamID)
	if err != nil {
		data["Error"] = s.apiMessage(c, err)
	}
	data["Members"] = members

	s.render(c, ws, http.StatusOK, "team_board.html", data)
}

func (s *Server) createTeam(c *gin.Context, ws *webSession) {
	team, err := s.api.CreateTeam(c.Request.Context(), dto.CreateTeamRequest{
		TeamName:  c.PostForm("team_name"),
		MemberIDs: []uint64{ws.User.UserID},
	})
	if err != nil {
		s.flash(c, ws, "Could not create team: "+s.apiMessage(c, err))
		c.Redirect(http.StatusSeeOther, "/team-board")
		return
	}
	s.flash(c, ws, "Team "+team.TeamName+" created.")
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/team-board?team_id=%d", team.TeamID))
}

func (s *Server) addMember(c *gin.Context, ws *webSession) {
	teamID, err := utils.ParseID(c.PostForm("team_id"))
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/team-board")
		return
	}
	back := fmt.Sprintf("/team-board?team_id=%d", teamID)

	user, err := s.api.AddTeamMember(c.Request.Context(), teamID, dto.AddMemberRequest{UID: strings.TrimSpace(c.PostForm("uid"))})
	if err != nil {
		s.flash(c, ws, "Could not add member: "+s.apiMessage(c, err))
		c.Redirect(http.StatusSeeOther, back)
		return
	}
	s.flash(c, ws, user.Username+" joined the team.")
	c.Redirect(http.StatusSeeOther, back)
}

// --- tasks ---

func (s *Server) newTaskPage(c *gin.Context, ws *webSession) {
	data := gin.H{"Title": "Create Task", "Form": taskForm{Status: models.TaskStatusTodo}}
	s.withChoices(c, ws, data)
	s.render(c, ws, http.StatusOK, "task_new.html", data)
}

func (s *Server) createTask(c *gin.Context, ws *webSession) {
	form := parseTaskForm(c)

	req, err := form.createRequest(ws.User.UserID)
	if err != nil {
		s.taskFormError(c, ws, form, err.Error())
		return
	}
	if _, err := s.api.CreateTask(c.Request.Context(), req); err != nil {
		s.taskFormError(c, ws, form, s.apiMessage(c, err))
		return
	}

	s.flash(c, ws, "Task created.")
	if req.TeamID != nil {
		c.Redirect(http.StatusSeeOther, fmt.Sprintf("/team-board?team_id=%d", *req.TeamID))
		return
	}
	c.Redirect(http.StatusSeeOther, "/board")
}

func (s *Server) taskFormError(c *gin.Context, ws *webSession, form taskForm, msg string) {
	data := gin.H{"Title": "Create Task", "Form": form, "Error": msg}
	s.withChoices(c, ws, data)
	s.render(c, ws, http.StatusBadRequest, "task_new.html", data)
}

// draftTasks shows AI suggestions; each one can be submitted as a new task.
func (s *Server) draftTasks(c *gin.Context, ws *webSession) {
	text := c.PostForm("text")
	data := gin.H{"Title": "Create Task", "Form": taskForm{Status: models.TaskStatusTodo}, "DraftText": text}

	var teamID *uint64
	if id, err := utils.ParseID(c.PostForm("team_id")); err == nil {
		teamID = &id
	}
	drafts, err := s.api.GenerateTasks(c.Request.Context(), dto.GenerateTasksRequest{Text: text, TeamID: teamID})
	if err != nil {
		data["Error"] = s.apiMessage(c, err)
	} else {
		data["Drafts"] = drafts
		if len(drafts) == 0 {
			data["Error"] = "No tasks could be drafted from that text."
		}
	}
	s.withChoices(c, ws, data)
	s.render(c, ws, http.StatusOK, "task_new.html", data)
}

func (s *Server) editTaskPage(c *gin.Context, ws *webSession) {
	taskID, err := utils.ParseID(c.Param("id"))
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/board")
		return
	}
	task, err := s.api.GetTask(c.Request.Context(), taskID)
	if err != nil {
		s.flash(c, ws, s.apiMessage(c, err))
		c.Redirect(http.StatusSeeOther, "/board")
		return
	}

	data := gin.H{
		"Title":    "Edit Task",
		"Task":     task,
		"ReturnTo": safeReturn(c.Query("return_to")),
	}
	data["Candidates"] = s.assigneeCandidates(c, ws, task.TeamID)
	s.render(c, ws, http.StatusOK, "task_edit.html", data)
}

func (s *Server) updateTask(c *gin.Context, ws *webSession) {
	back := safeReturn(c.PostForm("return_to"))
	taskID, err := utils.ParseID(c.Param("id"))
	if err != nil {
		c.Redirect(http.StatusSeeOther, back)
		return
	}

	req, err := parseEditForm(c)
	if err != nil {
		s.flash(c, ws, err.Error())
		c.Redirect(http.StatusSeeOther, back)
		return
	}
	if _, err := s.api.UpdateTask(c.Request.Context(), taskID, req); err != nil {
		s.flash(c, ws, "Could not update task: "+s.apiMessage(c, err))
		c.Redirect(http.StatusSeeOther, back)
		return
	}
	s.flash(c, ws, "Task updated.")
	c.Redirect(http.StatusSeeOther, back)
}

func (s *Server) deleteTask(c *gin.Context, ws *webSession) {
	back := safeReturn(c.PostForm("return_to"))
	taskID, err := utils.ParseID(c.Param("id"))
	if err == nil {
		err = s.api.DeleteTask(c.Request.Context(), taskID)
	}
	if err != nil {
		s.flash(c, ws, "Could not delete task: "+s.apiMessage(c, err))
	} else {
		s.flash(c, ws, "Task deleted.")
	}
	c.Redirect(http.StatusSeeOther, back)
}

// withChoices adds the team picker and assignee candidates to a task form.
func (s *Server) withChoices(c *gin.Context, ws *webSession, data gin.H) {
	teams, err := s.api.ListUserTeams(c.Request.Context(), ws.User.UID)
	if err != nil {
		data["Error"] = s.apiMessage(c, err)
	}
	data["Teams"] = teams
	data["Candidates"] = s.assigneeCandidates(c, ws, nil)
}

// assigneeCandidates lists who may be assigned: the members of the task's
// team, or the user and everyone they share a team with.
func (s *Server) assigneeCandidates(c *gin.Context, ws *webSession, teamID *uint64) []dto.UserDTO {
	ctx := c.Request.Context()
	if teamID != nil {
		members, err := s.api.ListTeamMembers(ctx, *teamID)
		if err != nil {
			return nil
		}
		return members
	}

	seen := map[uint64]bool{ws.User.UserID: true}
	candidates := []dto.UserDTO{*ws.User}
	teams, err := s.api.ListUserTeams(ctx, ws.User.UID)
	if err != nil {
		return candidates
	}
	for _, t := range teams {
		members, err := s.api.ListTeamMembers(ctx, t.TeamID)
		if err != nil {
			continue
		}
		for _, m := range members {
			if !seen[m.UserID] {
				seen[m.UserID] = true
				candidates = append(candidates, m)
			}
		}
	}
	return candidates
}

func containsTeam(teams []dto.TeamDTO, id uint64) bool {
	for _, t := range teams {
		if t.TeamID == id {
			return true
		}
	}
	return false
}

// safeReturn keeps redirects on this site.
func safeReturn(target string) string {
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") && !strings.Contains(target, "\\") {
		return target
	}
	return "/board"
}

// idList parses repeated form values; anything unparsable is skipped.
func idList(values []string) []uint64 {
	ids := make([]uint64, 0, len(values))
	for _, v := range values {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}
