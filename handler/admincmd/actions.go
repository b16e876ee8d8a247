package admincmd

import (
	"context"
	"errors"
	"fmt"

	"regbot/admin"
	"regbot/directory"
)

// Request is a parsed /register_admin invocation.
type Request struct {
	Action   string
	ActorID  string
	UserID   string
	UserName string
	Email    string
	PlayerID string
}

// Response is what the admin sees. File is set for exports.
type Response struct {
	Content  string
	File     []byte
	FileName string
}

func needsUser(action string) bool {
	switch action {
	case "setup", "count", "export":
		return false
	}
	return true
}

// Run executes one admin action and renders the outcome.
func Run(ctx context.Context, svc *admin.Service, req Request) Response {
	if needsUser(req.Action) && req.UserID == "" {
		return Response{Content: "❌ This action needs a `user`."}
	}
	mention := fmt.Sprintf("<@%s>", req.UserID)

	switch req.Action {
	case "setup":
		if _, err := svc.Setup(ctx); err != nil {
			return failure("Could not post the REGISTER panel", err)
		}
		return Response{Content: "Register post sent."}

	case "reset":
		had, err := svc.Reset(ctx, req.ActorID, req.UserID)
		if err != nil {
			return failure("Reset failed", err)
		}
		if !had {
			return Response{Content: fmt.Sprintf("Nothing to reset for %s.", mention)}
		}
		return Response{Content: fmt.Sprintf("Reset done for %s.", mention)}

	case "update_email":
		if err := svc.UpdateEmail(ctx, req.ActorID, req.UserID, req.UserName, req.Email); err != nil {
			return failure("Invalid email", err)
		}
		return Response{Content: fmt.Sprintf("Email updated for %s → `%s`", mention, req.Email)}

	case "update_player_id":
		if err := svc.UpdatePlayerID(ctx, req.ActorID, req.UserID, req.UserName, req.PlayerID); err != nil {
			return failure("Invalid Player ID", err)
		}
		return Response{Content: fmt.Sprintf("Player ID updated for %s → `%s`", mention, req.PlayerID)}

	case "update_record":
		if err := svc.UpdateRecord(ctx, req.ActorID, req.UserID, req.UserName, req.Email, req.PlayerID); err != nil {
			return failure("Invalid record", err)
		}
		return Response{Content: fmt.Sprintf("Record updated for %s.", mention)}

	case "edit_log":
		res, err := svc.EditLog(ctx, req.ActorID, req.UserID, req.UserName)
		if err != nil {
			return failure("Could not refresh the log entry", err)
		}
		if res == admin.LogEdited {
			return Response{Content: "Log message updated."}
		}
		return Response{Content: "Log re-posted and link saved."}

	case "grant_role":
		if err := svc.GrantRole(ctx, req.UserID); err != nil {
			switch {
			case errors.Is(err, directory.ErrRoleNotFound), errors.Is(err, directory.ErrRoleNotConfigured):
				return Response{Content: "❌ Registered role not found."}
			case errors.Is(err, directory.ErrMemberNotFound):
				return Response{Content: "❌ User not found."}
			}
			return failure("Role add error", err)
		}
		return Response{Content: fmt.Sprintf("Role granted to %s.", mention)}

	case "count":
		return Response{Content: fmt.Sprintf("In-memory submissions: **%d**", svc.Count())}

	case "export":
		data, err := svc.Export(ctx)
		if err != nil {
			return failure("Export failed", err)
		}
		return Response{Content: "Submissions export:", File: data, FileName: "submissions.csv"}
	}
	return Response{Content: "❌ Unknown action."}
}

func failure(what string, err error) Response {
	return Response{Content: fmt.Sprintf("❌ %s: `%v`", what, err)}
}
