package http

import (
	"net/http"
)

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	tabID, err := pathID(r, "tabID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	expenses, err := s.expenses.ListExpenses(r.Context(), actor(r), tabID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res := make([]expenseResponse, len(expenses))
	for i := range expenses {
		res[i] = toExpenseResponse(&expenses[i])
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"expenses": res})
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	tabID, err := pathID(r, "tabID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req expenseRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		writeError(w, r, err)
		return
	}

	expense, err := s.expenses.CreateExpense(r.Context(), actor(r), tabID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

func (s *Server) getExpense(w http.ResponseWriter, r *http.Request) {
	tabID, expenseID, ok := expensePath(w, r)
	if !ok {
		return
	}

	expense, err := s.expenses.GetExpense(r.Context(), actor(r), tabID, expenseID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toExpenseResponse(expense))
}

func (s *Server) updateExpense(w http.ResponseWriter, r *http.Request) {
	tabID, expenseID, ok := expensePath(w, r)
	if !ok {
		return
	}
	var req expenseRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		writeError(w, r, err)
		return
	}

	expense, err := s.expenses.UpdateExpense(r.Context(), actor(r), tabID, expenseID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toExpenseResponse(expense))
}

func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request) {
	tabID, expenseID, ok := expensePath(w, r)
	if !ok {
		return
	}

	if err := s.expenses.DeleteExpense(r.Context(), actor(r), tabID, expenseID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func expensePath(w http.ResponseWriter, r *http.Request) (int32, int32, bool) {
	tabID, err := pathID(r, "tabID")
	if err != nil {
		writeError(w, r, err)
		return 0, 0, false
	}
	expenseID, err := pathID(r, "expenseID")
	if err != nil {
		writeError(w, r, err)
		return 0, 0, false
	}
	return tabID, expenseID, true
}
