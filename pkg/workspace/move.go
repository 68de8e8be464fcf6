package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/boardwalkhq/boardwalk/pkg/metrics"
	"github.com/boardwalkhq/boardwalk/pkg/model"
	"github.com/boardwalkhq/boardwalk/pkg/workflow"
)

// ErrMoveRestricted is returned when the workflow guard rejects a move.
// The issue list is untouched and no backend request was issued.
var ErrMoveRestricted = errors.New("workflow restricts this transition")

// MoveIssue relocates the issue at sourceIndex within the source column to
// destIndex within the destination column.
//
// The sequence is: workflow guard check, optimistic local splice, backend
// move call, then reconciliation. On backend failure the pre-move issue
// list is restored when no other mutation has interleaved; otherwise the
// whole workspace is resynchronized from the backend.
//
// Moves are serialized per issue id, so two rapid moves of the same issue
// apply their server responses in call order.
func (s *Store) MoveIssue(ctx context.Context, sourceColumnID, destColumnID string, sourceIndex, destIndex int) error {
	// Identical column and index is a no-op; nothing to validate or send.
	if sourceColumnID == destColumnID && sourceIndex == destIndex {
		return nil
	}
	defer metrics.Timer(metrics.IssueMove)()

	s.mu.Lock()
	sourceIssues := columnLocal(s.issues, sourceColumnID)
	if sourceIndex < 0 || sourceIndex >= len(sourceIssues) {
		// Stale drag event; the source list was derived from the same
		// state, so this should not occur.
		s.mu.Unlock()
		return nil
	}
	subject := sourceIssues[sourceIndex]

	// The guard decides on column names, not ids: ids are per-project
	// while the gating rule is name-based policy.
	var srcName, dstName string
	if col, ok := s.columns.ByID(sourceColumnID); ok {
		srcName = col.Name
	}
	if col, ok := s.columns.ByID(destColumnID); ok {
		dstName = col.Name
	}
	if !workflow.Allowed(srcName, dstName) {
		s.mu.Unlock()
		return ErrMoveRestricted
	}

	snapshot := model.CloneIssues(s.issues)
	s.applyOptimisticMove(sourceColumnID, destColumnID, sourceIndex, destIndex)
	s.generation++
	postGen := s.generation
	s.mu.Unlock()

	unlock := s.lockIssueMove(subject.ID)
	defer unlock()

	authoritative, err := s.client.MoveIssue(ctx, subject.ID, destColumnID)
	if err != nil {
		s.recoverFailedMove(ctx, subject.ID, snapshot, postGen)
		return fmt.Errorf("moving issue %s to column %s: %w", subject.ID, destColumnID, err)
	}

	// The server response may carry fields the optimistic guess did not
	// set correctly (denormalized status, updatedAt). Merge it in place.
	s.reconcile(authoritative)
	return nil
}

// applyOptimisticMove partitions the issue list into source-column,
// destination-column and other issues, splices the subject across, and
// recombines. Only within-group order is semantically significant.
// Caller holds s.mu.
func (s *Store) applyOptimisticMove(sourceColumnID, destColumnID string, sourceIndex, destIndex int) {
	var srcGroup, dstGroup, others []model.Issue
	for _, issue := range s.issues {
		switch issue.BoardColumnID {
		case sourceColumnID:
			srcGroup = append(srcGroup, issue)
		case destColumnID:
			dstGroup = append(dstGroup, issue)
		default:
			others = append(others, issue)
		}
	}

	moved := srcGroup[sourceIndex]
	srcGroup = append(srcGroup[:sourceIndex], srcGroup[sourceIndex+1:]...)

	moved.BoardColumnID = destColumnID
	moved.Status = destColumnID

	if destIndex < 0 {
		destIndex = 0
	}
	if destIndex > len(dstGroup) {
		destIndex = len(dstGroup)
	}
	dstGroup = append(dstGroup[:destIndex], append([]model.Issue{moved}, dstGroup[destIndex:]...)...)

	s.issues = append(append(others, srcGroup...), dstGroup...)
}

// reconcile merges the authoritative server issue into local state,
// keeping its current list position.
func (s *Store) reconcile(authoritative model.Issue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.issues {
		if s.issues[i].ID == authoritative.ID {
			s.issues[i] = authoritative
			s.generation++
			return
		}
	}
}

// recoverFailedMove undoes a failed optimistic move. The splice is exactly
// invertible only while no other mutation has interleaved; the generation
// counter decides between restoring the snapshot and a full resync.
func (s *Store) recoverFailedMove(ctx context.Context, issueID string, snapshot []model.Issue, postGen uint64) {
	s.mu.Lock()
	if s.generation == postGen {
		s.issues = snapshot
		s.generation++
		s.mu.Unlock()
		s.logger.Printf("WARNING: move of %s failed, restored pre-move state", issueID)
		return
	}
	s.mu.Unlock()

	s.logger.Printf("WARNING: move of %s failed after further edits, resynchronizing", issueID)
	if err := s.Resync(ctx); err != nil {
		s.logger.Printf("WARNING: resynchronization failed: %v", err)
	}
}

// lockIssueMove acquires the per-issue move lock and returns its release.
func (s *Store) lockIssueMove(issueID string) func() {
	s.moveMu.Lock()
	mu, ok := s.moveLocks[issueID]
	if !ok {
		mu = &sync.Mutex{}
		s.moveLocks[issueID] = mu
	}
	s.moveMu.Unlock()

	mu.Lock()
	return mu.Unlock
}
