package provider

import "github.com/asticode/go-astiav"

// astiavDemuxerIterator walks astiav's registered input format list,
// mirroring the source's av_demuxer_iterate loop.
type astiavDemuxerIterator struct {
	it *astiav.InputFormatIterator
}

func newAstiavDemuxerIterator() *astiavDemuxerIterator {
	return &astiavDemuxerIterator{it: astiav.NewInputFormatIterator()}
}

func (a *astiavDemuxerIterator) Next() (demuxerInfo, bool) {
	f := a.it.Next()
	if f == nil {
		return demuxerInfo{}, false
	}
	return demuxerInfo{
		shortName: f.Name(),
		seekToPTS: f.Flags().Has(astiav.InputFormatFlagSeekToPts),
	}, true
}
