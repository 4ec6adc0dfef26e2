package gemini

const stylePrompt = `You are a professional hair stylist writing for a Japanese salon booking site.
Analyse the hairstyle in the image and answer in Japanese.
Choose category from exactly one of: %s
Respond with JSON only:
{"category": "...", "features": {"color": "...", "cut_technique": "...", "styling": "...", "impression": "..."}, "keywords": ["...", "..."]}`

const attributePrompt = `Classify the person's apparent sex and hair length in the image. Answer in Japanese.
sex must be one of: 男性, 女性
length must be one of: ベリーショート, ショート, ミディアム, セミロング, ロング, ベリーロング
Respond with JSON only: {"sex": "...", "length": "..."}`

const stylistPrompt = `Pick the stylist best suited to the hairstyle below.
Hairstyle analysis:
%s

Stylists (index: name / specialties / description):
%s

Respond with JSON only: {"index": <number>, "reason": "<one sentence in Japanese>"}`

const couponPrompt = `Pick the salon coupon best suited to the hairstyle below.
Hairstyle analysis:
%s

Coupons (index: name / price / description):
%s

Respond with JSON only: {"index": <number>, "reason": "<one sentence in Japanese>"}`

const rankPrompt = `Pick the title template that best describes the hairstyle below.
Hairstyle analysis:
%s
Sex: %s
Length: %s

Templates (index: category / title / comment):
%s

Respond with JSON only: {"index": <number>, "reason": "<one sentence in Japanese>"}`
