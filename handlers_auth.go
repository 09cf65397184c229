package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"himakeu/models"
	"himakeu/pkg/directory"
)

func (app *application) registerHandler(c *gin.Context) {
	var req struct {
		NIM        string `json:"nim"`
		FullName   string `json:"fullName"`
		Email      string `json:"email"`
		Department string `json:"department"`
		YearJoined int    `json:"yearJoined"`
		Username   string `json:"username"`
		Password   string `json:"password"`
		Phone      string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	member, err := app.directory.Register(c.Request.Context(), directory.Registration{
		NIM:        req.NIM,
		FullName:   req.FullName,
		Email:      req.Email,
		Department: req.Department,
		YearJoined: req.YearJoined,
		Username:   req.Username,
		Password:   req.Password,
		Phone:      req.Phone,
		Role:       models.RoleMember, // role is never client-supplied
	})
	if err != nil {
		failErr(c, err)
		return
	}

	created(c, "Registration successful! You can now login.", gin.H{
		"id":       member.ID,
		"nim":      member.NIM,
		"fullName": member.FullName,
		"email":    member.Email,
	})
}

func (app *application) loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, member, err := app.directory.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		failErr(c, err)
		return
	}

	token, err := issueToken(app.secret(), user, member)
	if err != nil {
		app.log.Error("failed to sign session token", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Login failed")
		return
	}
	setSessionCookie(c, app.cfg, token, int(sessionTTL.Seconds()))

	okMsg(c, "Login successful", gin.H{
		"id":       user.ID,
		"memberId": member.ID,
		"username": user.Username,
		"fullName": member.FullName,
		"role":     user.Role,
	})
}

func (app *application) logoutHandler(c *gin.Context) {
	setSessionCookie(c, app.cfg, "", -1)
	okMsg(c, "Logout successful", nil)
}

func (app *application) profileHandler(c *gin.Context) {
	act, _ := currentActor(c)
	member, err := app.directory.MemberByID(c.Request.Context(), act.MemberID)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, gin.H{
		"id":         member.ID,
		"nim":        member.NIM,
		"fullName":   member.FullName,
		"email":      member.Email,
		"department": member.Department,
		"yearJoined": member.YearJoined,
		"status":     member.Status,
		"username":   act.Username,
		"role":       act.Role,
	})
}
