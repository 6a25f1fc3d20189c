package models

import "testing"

func TestMailingTagIdRoundTrip(t *testing.T) {
	mailing := Mailing{TagIds: joinTagIds([]int{3, 1, 3, 7})}
	ids := mailing.TagIdList()

	if len(ids) != 3 {
		t.Fatalf("expected 3 unique ids, got %v", ids)
	}
	seen := map[int]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	for _, expected := range []int{3, 1, 7} {
		if !seen[expected] {
			t.Fatalf("id %d missing from %v", expected, ids)
		}
	}
}

func TestMailingTagIdList_Empty(t *testing.T) {
	mailing := Mailing{}
	if ids := mailing.TagIdList(); ids != nil {
		t.Fatalf("expected nil for empty tag list, got %v", ids)
	}
}

func TestMemberHasSegment(t *testing.T) {
	member := Member{Segments: joinSegments([]MemberSegment{MemberSegmentBoard, MemberSegmentDonor})}

	if !member.HasSegment(MemberSegmentBoard) || !member.HasSegment(MemberSegmentDonor) {
		t.Fatalf("segments lost in %q", member.Segments)
	}
	if member.HasSegment(MemberSegmentVolunteer) {
		t.Fatalf("unexpected segment in %q", member.Segments)
	}
}
