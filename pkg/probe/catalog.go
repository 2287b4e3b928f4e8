// Copyright 2025 CKSEARCH Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package probe

// The built-in catalogue. Merged from the historical per-module site
// lists; entries whose status-based checks were known to report missing
// profiles as present (Pinterest, DailyMotion, Scribd all answer 200
// for unknown users) are carried as ContentAbsent instead.

// Categories whose probes are reliable enough for quick mode. Everything
// is reachable in deep mode.
var quickCategories = map[string]bool{
	"Social": true, "Tech": true, "Gaming": true,
	"Video": true, "Music": true, "Art": true,
}

func tierFor(category string) Tier {
	if quickCategories[category] {
		return TierQuick
	}
	return TierDeep
}

func username(id, name, category, urlTemplate string, rule Rule) Probe {
	return Probe{
		ID:          id,
		DisplayName: name,
		Kind:        KindUsername,
		Category:    category,
		URLTemplate: urlTemplate,
		Method:      "GET",
		Rule:        rule,
		Tier:        tierFor(category),
	}
}

func usernameProbes() []Probe {
	return []Probe{
		// Social.
		username("github", "GitHub", "Tech", "https://github.com/{}", StatusExists{}),
		username("twitter", "Twitter/X", "Social", "https://twitter.com/{}",
			ContentAbsent{NotFound: []string{"This account doesn't exist", "Sorry, that page", "doesn't exist"}}),
		username("instagram", "Instagram", "Social", "https://www.instagram.com/{}/",
			ContentAbsent{NotFound: []string{"Sorry, this page isn't available", "Page Not Found"}}),
		username("tiktok", "TikTok", "Social", "https://www.tiktok.com/@{}",
			ContentAbsent{NotFound: []string{"Couldn't find this account", "couldn't find this page"}}),
		username("reddit", "Reddit", "Social", "https://www.reddit.com/user/{}/",
			ContentAbsent{NotFound: []string{"Sorry, nobody on Reddit goes by that name", "page not found"}}),
		username("pinterest", "Pinterest", "Social", "https://www.pinterest.com/{}/",
			ContentAbsent{NotFound: []string{"User not found", "couldn't find that page"}}),
		username("tumblr", "Tumblr", "Social", "https://{}.tumblr.com",
			ContentAbsent{NotFound: []string{"There's nothing here", "Not found"}}),
		username("linkedin", "LinkedIn", "Professional", "https://www.linkedin.com/in/{}/",
			ContentAbsent{NotFound: []string{"Page not found", "This page doesn't exist"}}),
		username("facebook", "Facebook", "Social", "https://www.facebook.com/{}",
			ContentAbsent{NotFound: []string{"This content isn't available", "Page Not Found", "Sorry, this content isn't available"}}),
		username("threads", "Threads", "Social", "https://www.threads.net/@{}",
			ContentAbsent{NotFound: []string{"Sorry, this page isn't available"}}),

		// Tech and developer.
		username("gitlab", "GitLab", "Tech", "https://gitlab.com/{}", StatusExists{}),
		username("bitbucket", "Bitbucket", "Tech", "https://bitbucket.org/{}/", StatusExists{}),
		username("devto", "Dev.to", "Tech", "https://dev.to/{}", StatusExists{}),
		username("codepen", "CodePen", "Tech", "https://codepen.io/{}", StatusExists{}),
		username("replit", "Replit", "Tech", "https://replit.com/@{}",
			ContentAbsent{NotFound: []string{"user not found", "404"}}),
		username("hackerrank", "HackerRank", "Tech", "https://www.hackerrank.com/{}",
			ContentAbsent{NotFound: []string{"Page Not Found", "Hmm, we can't find"}}),
		username("leetcode", "LeetCode", "Tech", "https://leetcode.com/{}",
			ContentAbsent{NotFound: []string{"That page doesn't exist"}}),
		username("kaggle", "Kaggle", "Tech", "https://www.kaggle.com/{}", StatusExists{}),
		username("hashnode", "Hashnode", "Tech", "https://hashnode.com/@{}",
			ContentAbsent{NotFound: []string{"not found", "doesn't exist"}}),
		username("dockerhub", "Docker Hub", "Tech", "https://hub.docker.com/u/{}", StatusExists{}),
		username("npm", "NPM", "Tech", "https://www.npmjs.com/~{}", StatusExists{}),
		username("pypi", "PyPI", "Tech", "https://pypi.org/user/{}/", StatusExists{}),
		username("keybase", "Keybase", "Tech", "https://keybase.io/{}", StatusExists{}),

		// Gaming.
		username("steam", "Steam", "Gaming", "https://steamcommunity.com/id/{}",
			ContentAbsent{NotFound: []string{"The specified profile could not be found"}}),
		username("twitch", "Twitch", "Gaming", "https://www.twitch.tv/{}",
			ContentAbsent{NotFound: []string{"Sorry. Unless you've got a time machine", "that page is in another castle"}}),
		username("kick", "Kick", "Gaming", "https://kick.com/{}",
			ContentAbsent{NotFound: []string{"Page not found", "Channel not found"}}),
		username("chesscom", "Chess.com", "Gaming", "https://www.chess.com/member/{}",
			ContentAbsent{NotFound: []string{"is not a valid username"}}),
		username("lichess", "Lichess", "Gaming", "https://lichess.org/@/{}", StatusExists{}),
		username("osu", "osu!", "Gaming", "https://osu.ppy.sh/users/{}",
			ContentAbsent{NotFound: []string{"The user you are looking for was not found"}}),
		username("speedrun", "Speedrun.com", "Gaming", "https://www.speedrun.com/user/{}", StatusExists{}),
		username("namemc", "NameMC", "Gaming", "https://namemc.com/profile/{}",
			ContentAbsent{NotFound: []string{"Profile Not Found"}}),

		// Video and streaming.
		username("youtube", "YouTube", "Video", "https://www.youtube.com/@{}",
			ContentAbsent{NotFound: []string{"This page isn't available", "404 Not Found"}}),
		username("vimeo", "Vimeo", "Video", "https://vimeo.com/{}", StatusExists{}),
		username("dailymotion", "DailyMotion", "Video", "https://www.dailymotion.com/{}",
			ContentAbsent{NotFound: []string{"Page not found", "doesn't exist"}}),
		username("rumble", "Rumble", "Video", "https://rumble.com/user/{}",
			ContentAbsent{NotFound: []string{"Channel not found"}}),
		username("odysee", "Odysee", "Video", "https://odysee.com/@{}",
			ContentAbsent{NotFound: []string{"This channel does not exist"}}),

		// Music.
		username("spotify", "Spotify", "Music", "https://open.spotify.com/user/{}",
			ContentPresent{MustExist: []string{"Public Playlists", "Followers", "Following"}}),
		username("soundcloud", "SoundCloud", "Music", "https://soundcloud.com/{}",
			ContentAbsent{NotFound: []string{"We can't find that user"}}),
		username("bandcamp", "Bandcamp", "Music", "https://{}.bandcamp.com",
			ContentAbsent{NotFound: []string{"Sorry, that something isn't here"}}),
		username("lastfm", "Last.fm", "Music", "https://www.last.fm/user/{}", StatusExists{}),
		username("mixcloud", "Mixcloud", "Music", "https://www.mixcloud.com/{}/", StatusExists{}),

		// Photo and art.
		username("flickr", "Flickr", "Photo", "https://www.flickr.com/people/{}/",
			ContentAbsent{NotFound: []string{"member not found"}}),
		username("500px", "500px", "Photo", "https://500px.com/p/{}", StatusExists{}),
		username("unsplash", "Unsplash", "Photo", "https://unsplash.com/@{}", StatusExists{}),
		username("deviantart", "DeviantArt", "Art", "https://www.deviantart.com/{}",
			ContentAbsent{NotFound: []string{"This DeviantArt page does not exist"}}),
		username("artstation", "ArtStation", "Art", "https://www.artstation.com/{}",
			ContentAbsent{NotFound: []string{"Oops! We couldn't find"}}),
		username("behance", "Behance", "Art", "https://www.behance.net/{}",
			ContentAbsent{NotFound: []string{"Oops! We can't find"}}),
		username("dribbble", "Dribbble", "Art", "https://dribbble.com/{}", StatusExists{}),
		username("imgur", "Imgur", "Photo", "https://imgur.com/user/{}/",
			ContentAbsent{NotFound: []string{"Couldn't find that user"}}),
		username("vsco", "VSCO", "Photo", "https://vsco.co/{}",
			ContentAbsent{NotFound: []string{"Page not found"}}),

		// Blog and writing.
		username("medium", "Medium", "Blog", "https://medium.com/@{}",
			ContentAbsent{NotFound: []string{"PAGE NOT FOUND", "doesn't have any stories"}}),
		username("substack", "Substack", "Blog", "https://{}.substack.com",
			ContentAbsent{NotFound: []string{"Page not found"}}),
		username("wordpress", "WordPress", "Blog", "https://{}.wordpress.com",
			ContentAbsent{NotFound: []string{"doesn't exist", "is no longer available"}}),
		username("wattpad", "Wattpad", "Writing", "https://www.wattpad.com/user/{}", StatusExists{}),
		username("goodreads", "Goodreads", "Book", "https://www.goodreads.com/{}", StatusExists{}),
		username("scribd", "Scribd", "Book", "https://www.scribd.com/{}",
			ContentAbsent{NotFound: []string{"Page not found", "not available"}}),

		// Professional.
		username("aboutme", "About.me", "Professional", "https://about.me/{}", StatusExists{}),
		username("linktree", "Linktree", "Professional", "https://linktr.ee/{}",
			ContentAbsent{NotFound: []string{"This Linktree doesn't exist", "Nothing here"}}),
		username("carrd", "Carrd", "Professional", "https://{}.carrd.co",
			ContentAbsent{NotFound: []string{"Not found"}}),
		username("fiverr", "Fiverr", "Professional", "https://www.fiverr.com/{}",
			ContentAbsent{NotFound: []string{"isn't available", "Page not found"}}),
		username("upwork", "Upwork", "Professional", "https://www.upwork.com/freelancers/~{}",
			ContentAbsent{NotFound: []string{"Page not found", "profile is unavailable"}}),

		// Shopping.
		username("ebay", "eBay", "Shopping", "https://www.ebay.com/usr/{}",
			ContentAbsent{NotFound: []string{"The User ID you entered was not found"}}),
		username("etsy", "Etsy", "Shopping", "https://www.etsy.com/shop/{}",
			ContentAbsent{NotFound: []string{"Sorry, this shop is currently unavailable"}}),
		username("poshmark", "Poshmark", "Shopping", "https://poshmark.com/closet/{}",
			ContentAbsent{NotFound: []string{"Closet Not Found"}}),
		username("depop", "Depop", "Shopping", "https://www.depop.com/{}",
			ContentAbsent{NotFound: []string{"This page doesn't exist"}}),
		username("redbubble", "Redbubble", "Shopping", "https://www.redbubble.com/people/{}/shop",
			ContentAbsent{NotFound: []string{"Oops! We couldn't find"}}),

		// Finance and donation.
		username("paypalme", "PayPal.me", "Finance", "https://paypal.me/{}",
			ContentAbsent{NotFound: []string{"This link is not available"}}),
		username("kofi", "Ko-fi", "Finance", "https://ko-fi.com/{}",
			ContentAbsent{NotFound: []string{"doesn't have a Ko-fi page"}}),
		username("buymeacoffee", "BuyMeACoffee", "Finance", "https://www.buymeacoffee.com/{}",
			ContentAbsent{NotFound: []string{"Page not found"}}),
		username("patreon", "Patreon", "Finance", "https://www.patreon.com/{}",
			ContentAbsent{NotFound: []string{"not exist", "404"}}),

		// Chat and misc.
		username("telegram", "Telegram", "Chat", "https://t.me/{}",
			ContentPresent{MustExist: []string{"tgme_page_title", "If you have Telegram, you can contact"}}),
		username("gravatar", "Gravatar", "Other", "https://en.gravatar.com/{}", StatusExists{}),
		username("disqus", "Disqus", "Other", "https://disqus.com/by/{}/", StatusExists{}),

		// Indonesia platforms.
		username("kaskus", "Kaskus", "Indonesia", "https://www.kaskus.co.id/profile/{}",
			ContentAbsent{NotFound: []string{"Profil tidak ditemukan", "Not found"}}),
		username("tokopedia", "Tokopedia", "Indonesia", "https://www.tokopedia.com/{}",
			ContentAbsent{NotFound: []string{"Toko Tidak Ditemukan", "Halaman tidak ditemukan"}}),
		username("bukalapak", "Bukalapak", "Indonesia", "https://www.bukalapak.com/u/{}",
			ContentAbsent{NotFound: []string{"Lapak tidak ditemukan"}}),
		username("shopee-id", "Shopee ID", "Indonesia", "https://shopee.co.id/{}",
			ContentAbsent{NotFound: []string{"Halaman tidak ditemukan"}}),
		username("kompasiana", "Kompasiana", "Indonesia", "https://www.kompasiana.com/{}",
			ContentAbsent{NotFound: []string{"halaman tidak ditemukan", "Page not found"}}),
		username("brainly-id", "Brainly ID", "Indonesia", "https://brainly.co.id/profil/{}",
			ContentAbsent{NotFound: []string{"Pengguna tidak ditemukan", "User not found"}}),
	}
}

func emailProbes() []Probe {
	return []Probe{
		{
			ID: "email-twitter", DisplayName: "Twitter/X", Kind: KindEmail, Category: "Social",
			URLTemplate: "https://api.twitter.com/i/users/email_available.json?email={}",
			Method:      "GET",
			Rule:        JSONFieldEquals{Pointer: "/taken", Expected: true},
			Tier:        TierQuick,
		},
		{
			ID: "email-spotify", DisplayName: "Spotify", Kind: KindEmail, Category: "Music",
			URLTemplate: "https://spclient.wg.spotify.com/signup/public/v1/account?validate=1&email={}",
			Method:      "GET",
			// Status 20 means the address is already registered.
			Rule: JSONFieldEquals{Pointer: "/status", Expected: 20},
			Tier: TierQuick,
		},
		{
			ID: "email-github", DisplayName: "GitHub", Kind: KindEmail, Category: "Tech",
			URLTemplate: "https://github.com/signup_check/email?value={}",
			Method:      "GET",
			Rule:        ContentPresent{MustExist: []string{"already taken"}},
			Tier:        TierQuick,
		},
		{
			ID: "email-wordpress", DisplayName: "WordPress.com", Kind: KindEmail, Category: "Blog",
			URLTemplate: "https://public-api.wordpress.com/rest/v1.1/users/email/{}/auth-options",
			Method:      "GET",
			Rule:        JSONFieldTruthy{Pointer: "/passwordless"},
			Tier:        TierQuick,
		},
		{
			ID: "email-adobe", DisplayName: "Adobe", Kind: KindEmail, Category: "Tech",
			URLTemplate:  "https://adobeid-na1.services.adobe.com/renga-idprovider/pages/validate_email",
			Method:       "POST",
			BodyTemplate: "email={}",
			Headers:      map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
			Rule:         JSONFieldTruthy{Pointer: "/valid"},
			Tier:         TierDeep,
		},
		{
			ID: "email-firefox", DisplayName: "Firefox Accounts", Kind: KindEmail, Category: "Tech",
			URLTemplate:  "https://accounts.firefox.com/api/account/status",
			Method:       "POST",
			BodyTemplate: `{"email":"{}"}`,
			Headers:      map[string]string{"Content-Type": "application/json"},
			Rule:         JSONFieldTruthy{Pointer: "/exists"},
			Tier:         TierDeep,
		},
		{
			ID: "email-gravatar", DisplayName: "Gravatar", Kind: KindEmail, Category: "Other",
			URLTemplate: "https://www.gravatar.com/avatar/{}?d=404",
			Method:      "GET",
			Rule:        StatusExists{},
			Tier:        TierQuick,
			MD5Value:    true,
		},
		{
			ID: "email-pinterest", DisplayName: "Pinterest", Kind: KindEmail, Category: "Social",
			// The empty context object is pre-encoded so the template
			// carries a single substitution placeholder.
			URLTemplate: `https://www.pinterest.com/_ngjs/resource/EmailExistsResource/get/?source_url=/&data={"options":{"email":"{}"},"context":%7B%7D}`,
			Method:      "GET",
			Rule:        JSONFieldTruthy{Pointer: "/resource_response/data"},
			Tier:        TierDeep,
		},
	}
}

func phoneProbes() []Probe {
	return []Probe{
		{
			ID: "phone-snapchat", DisplayName: "Snapchat", Kind: KindPhone, Category: "Social",
			URLTemplate:  "https://accounts.snapchat.com/accounts/get_username_suggestions",
			Method:       "POST",
			BodyTemplate: `{"phone":"{}"}`,
			Headers:      map[string]string{"Content-Type": "application/json"},
			Rule:         JSONFieldTruthy{Pointer: "/suggestions"},
			Tier:         TierQuick,
		},
		{
			ID: "phone-hiya", DisplayName: "Hiya", Kind: KindPhone, Category: "Directory",
			URLTemplate: "https://hiya.com/phone/{}",
			Method:      "GET",
			Rule:        StatusExists{},
			Tier:        TierDeep,
		},
		{
			ID: "phone-sync-me", DisplayName: "Sync.me", Kind: KindPhone, Category: "Directory",
			URLTemplate: "https://sync.me/search/?number={}",
			Method:      "GET",
			Rule:        ContentAbsent{NotFound: []string{"No results found", "not found"}}, Tier: TierDeep,
		},
		{
			ID: "phone-tellows", DisplayName: "Tellows", Kind: KindPhone, Category: "Directory",
			URLTemplate: "https://www.tellows.com/num/{}",
			Method:      "GET",
			Rule:        StatusExists{},
			Tier:        TierDeep,
		},
	}
}

// DefaultBuilder returns a builder pre-loaded with the built-in
// catalogue, for callers that layer overlay files on top.
func DefaultBuilder() *Builder {
	b := NewBuilder()
	for _, p := range usernameProbes() {
		b.Add(p)
	}
	for _, p := range emailProbes() {
		b.Add(p)
	}
	for _, p := range phoneProbes() {
		b.Add(p)
	}
	return b
}

// DefaultRegistry builds the registry from the built-in catalogue.
func DefaultRegistry() (*Registry, error) {
	return DefaultBuilder().Build()
}
