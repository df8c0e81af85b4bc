package model

// Channel is a specific publishing surface; Provider is the platform behind it.
// Several channels can map to the same provider (e.g. instagram feed vs story).
type Channel string

type Provider string

const (
	ChannelFacebook       Channel = "facebook"
	ChannelInstagramFeed  Channel = "instagram_feed"
	ChannelInstagramStory Channel = "instagram_story"
	ChannelLinkedIn       Channel = "linkedin"
	ChannelX              Channel = "x"
	ChannelTikTok         Channel = "tiktok"
)

const (
	ProviderFacebook  Provider = "facebook"
	ProviderInstagram Provider = "instagram"
	ProviderLinkedIn  Provider = "linkedin"
	ProviderX         Provider = "x"
	ProviderTikTok    Provider = "tiktok"
)

// channelProviders is the canonical channel -> provider lookup. New channels
// must be added here explicitly; there is no string-derivation fallback.
var channelProviders = map[Channel]Provider{
	ChannelFacebook:       ProviderFacebook,
	ChannelInstagramFeed:  ProviderInstagram,
	ChannelInstagramStory: ProviderInstagram,
	ChannelLinkedIn:       ProviderLinkedIn,
	ChannelX:              ProviderX,
	ChannelTikTok:         ProviderTikTok,
}

// ProviderForChannel resolves a channel to its provider. The second return is
// false for channels the pipeline does not know about.
func ProviderForChannel(ch Channel) (Provider, bool) {
	p, ok := channelProviders[ch]
	return p, ok
}

// KnownChannels returns all channels the pipeline can publish to.
func KnownChannels() []Channel {
	out := make([]Channel, 0, len(channelProviders))
	for ch := range channelProviders {
		out = append(out, ch)
	}
	return out
}
