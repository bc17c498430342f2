package dictionary

import "testing"

func TestFIX44KnowsCoreSessionFields(t *testing.T) {
	d := FIX44()

	fd, ok := d.FieldByTag(SenderCompID)
	if !ok {
		t.Fatal("FieldByTag(SenderCompID) not found")
	}
	if fd.Name != "SenderCompID" {
		t.Fatalf("Name = %q, want SenderCompID", fd.Name)
	}
	if fd.Section != Header {
		t.Fatalf("Section = %v, want Header", fd.Section)
	}
}

func TestFIX44UnknownTag(t *testing.T) {
	d := FIX44()
	if _, ok := d.FieldByTag(Tag(999999)); ok {
		t.Fatal("FieldByTag found a definition for a tag that was never registered")
	}
}

func TestMustFieldByTagPanicsOnUnknownTag(t *testing.T) {
	d := FIX44()
	defer func() {
		if recover() == nil {
			t.Fatal("MustFieldByTag should panic on an unregistered tag")
		}
	}()
	d.MustFieldByTag(Tag(999999))
}

func TestIsNumInGroupRecognizesGroupStarts(t *testing.T) {
	d := FIX44()
	if !d.IsNumInGroup(NoMiscFees) {
		t.Fatal("NoMiscFees should be recognized as a NumInGroup field")
	}
	if d.IsNumInGroup(SenderCompID) {
		t.Fatal("SenderCompID is not a group-start field")
	}
}

func TestGroupTagsCoversNestedMembers(t *testing.T) {
	d := FIX44()
	tags, ok := d.GroupTags(NoMiscFees)
	if !ok {
		t.Fatal("GroupTags(NoMiscFees) not found")
	}
	if !tags[MiscFeeAmt] || !tags[MiscFeeType] {
		t.Fatalf("GroupTags(NoMiscFees) = %v, missing MiscFeeAmt/MiscFeeType", tags)
	}
}

func TestSectionString(t *testing.T) {
	cases := map[Section]string{Header: "Header", Body: "Body", Trailer: "Trailer", Section(99): "Unknown"}
	for section, want := range cases {
		if got := section.String(); got != want {
			t.Fatalf("Section(%d).String() = %q, want %q", section, got, want)
		}
	}
}
