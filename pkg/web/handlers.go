// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/outrigdev/iniedit/pkg/docsearch"
	"github.com/outrigdev/iniedit/pkg/workspace"
)

type SetRootRequest struct {
	Dir string `json:"dir"`
}

type OpenRequest struct {
	Path string `json:"path"`
}

type EditsRequest struct {
	Values map[string]string `json:"values"`
}

// SessionView is the JSON shape of an open document
type SessionView struct {
	Id       string              `json:"id"`
	Path     string              `json:"path"`
	Name     string              `json:"name"`
	Dirty    bool                `json:"dirty"`
	Entries  []workspace.Entry   `json:"entries"`
	Elements []docsearch.Element `json:"elements"`
}

func makeSessionView(sess *workspace.Session) SessionView {
	return SessionView{
		Id:       sess.Id(),
		Path:     sess.Path(),
		Name:     sess.Name(),
		Dirty:    sess.Dirty(),
		Entries:  sess.Values(),
		Elements: sess.Elements(),
	}
}

func (s *Server) sessionFromRequest(r *http.Request) (*workspace.Session, error) {
	id := mux.Vars(r)["id"]
	sess, err := s.ws.Get(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, id)
	}
	return sess, nil
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	syntax, err := s.querySyntax(r.URL.Query().Get("syntax"))
	if err != nil {
		WriteJsonError(w, err)
		return
	}
	files, err := s.ws.Filter(r.Context(), query, syntax)
	if err != nil {
		WriteJsonError(w, err)
		return
	}
	WriteJsonSuccess(w, map[string]any{
		"root":  s.ws.Root(),
		"files": files,
	})
}

func (s *Server) handleSetRoot(w http.ResponseWriter, r *http.Request) {
	var req SetRootRequest
	if err := readJsonBody(w, r, &req); err != nil {
		WriteJsonError(w, err)
		return
	}
	if req.Dir == "" {
		WriteJsonError(w, fmt.Errorf("dir is required"))
		return
	}
	if err := s.ws.SetRoot(req.Dir); err != nil {
		WriteJsonError(w, err)
		return
	}
	WriteJsonSuccess(w, map[string]any{"root": s.ws.Root()})
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req OpenRequest
	if err := readJsonBody(w, r, &req); err != nil {
		WriteJsonError(w, err)
		return
	}
	if req.Path == "" {
		WriteJsonError(w, fmt.Errorf("path is required"))
		return
	}
	sess, err := s.ws.Open(req.Path)
	if err != nil {
		WriteJsonError(w, err)
		return
	}
	WriteJsonSuccess(w, makeSessionView(sess))
}

func (s *Server) handleGetDoc(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
		WriteJsonError(w, err)
		return
	}
	WriteJsonSuccess(w, makeSessionView(sess))
}

func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
		WriteJsonError(w, err)
		return
	}
	syntax, err := s.querySyntax(r.URL.Query().Get("syntax"))
	if err != nil {
		WriteJsonError(w, err)
		return
	}
	WriteJsonSuccess(w, sess.Highlight(r.URL.Query().Get("q"), syntax))
}

func (s *Server) handleEdits(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
		WriteJsonError(w, err)
		return
	}
	var req EditsRequest
	if err := readJsonBody(w, r, &req); err != nil {
		WriteJsonError(w, err)
		return
	}
	changed, err := sess.ApplyEdits(req.Values)
	if err != nil {
		WriteJsonError(w, err)
		return
	}
	if changed == nil {
		changed = []string{}
	}
	WriteJsonSuccess(w, map[string]any{"changed": changed, "dirty": sess.Dirty()})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
		WriteJsonError(w, err)
		return
	}
	saved, err := sess.Save()
	if err != nil {
		WriteJsonError(w, err)
		return
	}
	WriteJsonSuccess(w, map[string]any{"saved": saved})
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.ws.Close(id); err != nil {
		WriteJsonError(w, fmt.Errorf("%w: %s", err, id))
		return
	}
	WriteJsonSuccess(w, nil)
}
