package provider

import "testing"

type fakeDemuxerIterator struct {
	demuxers []demuxerInfo
	idx      int
}

func (f *fakeDemuxerIterator) Next() (demuxerInfo, bool) {
	if f.idx >= len(f.demuxers) {
		return demuxerInfo{}, false
	}
	d := f.demuxers[f.idx]
	f.idx++
	return d, true
}

func TestFilterExtensions_KeepsSeekablePresentAndAllowed(t *testing.T) {
	it := &fakeDemuxerIterator{demuxers: []demuxerInfo{
		{shortName: "mp3", seekToPTS: true},
		{shortName: "wav", seekToPTS: true},
	}}
	got := filterExtensions(it, nil)
	want := map[string]bool{"mp3": true, "wav": true}
	if len(got) != len(want) {
		t.Fatalf("filterExtensions() = %v, want %v", got, want)
	}
	for _, ext := range got {
		if !want[ext] {
			t.Errorf("unexpected extension %q", ext)
		}
	}
}

func TestFilterExtensions_ExcludesNonSeekable(t *testing.T) {
	it := &fakeDemuxerIterator{demuxers: []demuxerInfo{
		{shortName: "mp3", seekToPTS: false},
	}}
	if got := filterExtensions(it, nil); len(got) != 0 {
		t.Errorf("filterExtensions() = %v, want empty", got)
	}
}

func TestFilterExtensions_ExcludesDenylisted(t *testing.T) {
	it := &fakeDemuxerIterator{demuxers: []demuxerInfo{
		{shortName: "flac", seekToPTS: true},
		{shortName: "ogg", seekToPTS: true},
	}}
	if got := filterExtensions(it, nil); len(got) != 0 {
		t.Errorf("filterExtensions() = %v, want empty (both denylisted)", got)
	}
}

func TestFilterExtensions_ExcludesUnknownShortNames(t *testing.T) {
	it := &fakeDemuxerIterator{demuxers: []demuxerInfo{
		{shortName: "some_未知_demuxer", seekToPTS: true},
	}}
	if got := filterExtensions(it, nil); len(got) != 0 {
		t.Errorf("filterExtensions() = %v, want empty", got)
	}
}

func TestFilterExtensions_DeduplicatesAcrossDemuxers(t *testing.T) {
	it := &fakeDemuxerIterator{demuxers: []demuxerInfo{
		{shortName: "opus", seekToPTS: true},
		{shortName: "libopus", seekToPTS: true},
	}}
	got := filterExtensions(it, nil)
	if len(got) != 1 || got[0] != "opus" {
		t.Errorf("filterExtensions() = %v, want [\"opus\"]", got)
	}
}

func TestFilterExtensions_MultiExtensionShortName(t *testing.T) {
	it := &fakeDemuxerIterator{demuxers: []demuxerInfo{
		{shortName: "mov,mp4,m4a,3gp,3g2,mj2", seekToPTS: true},
	}}
	got := filterExtensions(it, nil)
	want := []string{"mov", "mp4", "m4a", "3gp", "3g2", "mj2"}
	if len(got) != len(want) {
		t.Fatalf("filterExtensions() = %v, want %v", got, want)
	}
	for i, ext := range want {
		if got[i] != ext {
			t.Errorf("filterExtensions()[%d] = %q, want %q", i, got[i], ext)
		}
	}
}
