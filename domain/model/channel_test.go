package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderForChannel(t *testing.T) {
	cases := map[Channel]Provider{
		ChannelFacebook:       ProviderFacebook,
		ChannelInstagramFeed:  ProviderInstagram,
		ChannelInstagramStory: ProviderInstagram,
		ChannelLinkedIn:       ProviderLinkedIn,
		ChannelX:              ProviderX,
		ChannelTikTok:         ProviderTikTok,
	}
	for ch, want := range cases {
		got, ok := ProviderForChannel(ch)
		require.True(t, ok, "channel %s should resolve", ch)
		assert.Equal(t, want, got)
	}
}

func TestProviderForChannel_Unknown(t *testing.T) {
	_, ok := ProviderForChannel(Channel("myspace"))
	assert.False(t, ok)
}

func TestKnownChannels(t *testing.T) {
	assert.Len(t, KnownChannels(), 6)
}
